package main

import "github.com/tgshanahan/killbill-adyen-plugin/cmd"

func main() {
	cmd.Execute()
}
