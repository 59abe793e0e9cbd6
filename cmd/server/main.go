package main

import "github.com/Leeseongbin2/smm-panel-v2/internal/app/server"

func main() {
	server.Run()
}
