// Copyright (c) 2026 Ecols
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/Ecols/Firmware/internal/app"
	"github.com/Ecols/Firmware/internal/config"
)

func main() {
	configPath := flag.String("config", "./mag_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting magnetometer console (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunConsole(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
