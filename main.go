package main

import "github.com/StinkyLord/dbc-relational/cmd"

func main() {
	cmd.Execute()
}
