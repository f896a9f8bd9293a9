package main

import "github.com/guimove/fairprice/cmd"

func main() {
	cmd.Execute()
}
