// Package xthor implements the torrent indexer client used to locate
// download candidates for a requested title.
package xthor
