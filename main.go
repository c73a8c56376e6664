package main

import "github.com/andresmejia3/framedump/cmd"

func main() {
	cmd.Execute()
}
