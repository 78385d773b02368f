package main

import "github.com/obedav/ancerlarins-ingest/cmd"

func main() {
	cmd.Execute()
}
