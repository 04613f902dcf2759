package main

import "nearby-activity-backend/cmd"

func main() {
	cmd.Run()
}
