package main

import "github.com/Yaroslav326/TaskManagement/cmd"

func main() {
	cmd.Execute()
}
