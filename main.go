// Meshbrowse browses content-hash addressed ctt:// content through a local
// mesh daemon, from the terminal or a local viewer server.
package main

import "meshbrowse/cli"

func main() {
	cli.Execute()
}
