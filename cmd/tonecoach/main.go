// Tonecoach coaches email replies with a language model.
//
// It reads a Gmail thread, asks a local or hosted model either to coach a
// reply draft or to infer what the sender wants, streams the answer to the
// browser and files the actionable part as a Gmail draft.
//
// Usage:
//
//	# Authorize the Gmail account once
//	tonecoach auth
//
//	# Start the web UI on 127.0.0.1:7860
//	tonecoach run
//
//	# List inbox threads
//	tonecoach threads --query "is:unread" --max 10
//
//	# Summarize model usage and cost for the last week
//	tonecoach usage --since 168h
package main

import "os"

func main() {
	os.Exit(Execute())
}
