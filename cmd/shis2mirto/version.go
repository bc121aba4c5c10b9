package main

import "fmt"

// Version is injected at build time via ldflags.
var Version = "dev"

var cmdVersion = &Command{
	UsageLine: "version",
	Short:     "print the shis2mirto version",
	Long: `
Version prints the shis2mirto version.
`,
}

func init() {
	cmdVersion.Run = runVersion // break init cycle
}

func runVersion(cmd *Command, args []string) {
	fmt.Printf("shis2mirto %s\n", Version)
}
