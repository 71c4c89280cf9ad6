package main

import "github.com/Mohsinsiddi/w3mvp/cmd"

func main() {
	cmd.Execute()
}
