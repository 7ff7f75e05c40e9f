package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Ecols/Firmware/internal/config"
	"github.com/Ecols/Firmware/internal/env"
)

// RunConsole subscribes to the magnetometer and environment topics and
// pretty-prints the payloads.
func RunConsole() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	magToken := client.Subscribe(cfg.TopicMag, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var p magPayload
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("console: mag unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[MAG ]  %s mx=%6d my=%6d mz=%6d  ux=%8.2f uy=%8.2f uz=%8.2f  |B|=%7.2fµT  temp=%.1f°C\n",
			p.Tag, p.Mx, p.My, p.Mz, p.Ux, p.Uy, p.Uz, p.Norm, p.TempC,
		)
	})
	magToken.Wait()
	if magToken.Error() != nil {
		return magToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicMag)

	envToken := client.Subscribe(cfg.TopicEnv, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s env.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("console: env unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[ENV ]  %s temp=%.2f°C pressure=%.2fhPa\n",
			s.Source, s.Temperature, s.PressureHPa,
		)
	})
	envToken.Wait()
	if envToken.Error() != nil {
		return envToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicEnv)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
