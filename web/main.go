package main

import (
	"flag"
	"log"
	"os"

	"github.com/df07/go-sphere-tracer/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	scenesDir := flag.String("scenes", "scenes", "Directory containing JSON scenes")
	staticDir := flag.String("static", "web/static", "Directory containing the web client")
	flag.Parse()

	// Create and start web server
	webServer := server.NewServer(*port, *scenesDir, *staticDir)

	log.Printf("Sphere Tracer Web Server")
	log.Printf("Visit http://localhost:%d to start rendering", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
