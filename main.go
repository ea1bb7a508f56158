/*
Copyright 2024 Markus Papenbrock
*/
package main

import "github.com/mpapenbr/simlap-service-go/cmd"

func main() {
	cmd.Execute()
}
