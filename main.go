package main

import "github.com/rafaeltorresng/Sheets-to-Docs/cmd"

func main() {
	cmd.Execute()
}
