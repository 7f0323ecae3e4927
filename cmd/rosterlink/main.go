package main

import (
	"rosterlink/cmd/rosterlink/cmd"
	"rosterlink/lib/serviceutil"
)

func main() {
	cmd.Execute(serviceutil.SignalContext())
}
