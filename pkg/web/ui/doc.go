// Package ui serves the single browser page of tonecoach.
//
// The page is embedded in the binary. web.template_file replaces it with a
// file from disk, and with web.watch enabled a Watcher reloads that file
// whenever it changes, so the page can be edited without a restart.
package ui
