// Package config provides the configuration of scanreport: which snapshot
// to report on, which formats to render, where to write and archive them
// and whom to notify.
package config
