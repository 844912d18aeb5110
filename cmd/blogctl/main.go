package main

import (
	"os"

	"blogsupport/cmd/blogctl/commands"
)

func main() {
	if err := commands.NewRootCmd(commands.MongoOpener).Execute(); err != nil {
		os.Exit(1)
	}
}
