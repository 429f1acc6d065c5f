package main

import "github.com/fooddelivery/ms-go-checkout/cmd"

func main() {
	cmd.Execute()
}
