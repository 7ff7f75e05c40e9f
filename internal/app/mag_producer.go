// Copyright (c) 2026 Ecols
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"log"
	"math"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/Ecols/Firmware/internal/config"
	"github.com/Ecols/Firmware/internal/mag"
	"github.com/Ecols/Firmware/internal/sensors"
)

// magPayload is the JSON schema published on the mag topic. mx/my/mz are raw
// counts in the board frame; ux/uy/uz are µT with the factory sensitivity
// adjustment applied.
type magPayload struct {
	Tag      string  `json:"tag"`
	Mx       int16   `json:"mx"`
	My       int16   `json:"my"`
	Mz       int16   `json:"mz"`
	Ux       float64 `json:"ux"`
	Uy       float64 `json:"uy"`
	Uz       float64 `json:"uz"`
	Norm     float64 `json:"norm"`
	External bool    `json:"external"`
	TempC    float64 `json:"temp_c"`
	Time     string  `json:"time"`
}

// mqttSink republishes gated magnetometer samples to MQTT.
type mqttSink struct {
	client mqtt.Client
	topic  string
	adj    mag.Adjustment
}

func (s *mqttSink) SetAdjustment(a mag.Adjustment) { s.adj = a }

func (s *mqttSink) Publish(smp mag.Sample) {
	ux, uy, uz := s.adj.Apply(smp.X, smp.Y, smp.Z)
	payload := magPayload{
		Tag:      smp.Tag,
		Mx:       smp.X,
		My:       smp.Y,
		Mz:       smp.Z,
		Ux:       ux,
		Uy:       uy,
		Uz:       uz,
		Norm:     math.Sqrt(ux*ux + uy*uy + uz*uz),
		External: smp.External,
		TempC:    smp.Temperature,
		Time:     smp.Timestamp.UTC().Format(time.RFC3339Nano),
	}

	b, err := json.Marshal(payload)
	if err != nil {
		log.Printf("mag marshal error: %v", err)
		return
	}
	if token := s.client.Publish(s.topic, 0, true, b); token.Wait() && token.Error() != nil {
		log.Printf("MQTT publish error (mag): %v", token.Error())
	}
}

// initMagHardware brings up the parent IMU and the magnetometer driver.
func initMagHardware(sink mag.Publisher) (*sensors.MPU9250, *sensors.AK8963, error) {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return nil, nil, err
	}

	bus, err := i2creg.Open(cfg.MagI2CBus)
	if err != nil {
		return nil, nil, err
	}

	parent, err := sensors.NewMPU9250(bus, sensors.MPU9250Opts{
		Addr:     cfg.MagI2CAddr,
		External: cfg.MagExternal,
	})
	if err != nil {
		return nil, nil, err
	}

	drv := sensors.NewAK8963(parent, sink, nil)
	return parent, drv, nil
}

// bringup runs the full magnetometer start sequence: identify and configure
// the chip, read the factory calibration (which leaves it powered down),
// then Reset to restore continuous sampling.
func bringup(drv *sensors.AK8963) error {
	if err := drv.Setup(); err != nil {
		return err
	}
	if err := drv.ReadSensitivity(); err != nil {
		log.Printf("mag: calibration read failed, using unity adjustment: %v", err)
	}
	return drv.Reset()
}

// RunMagProducer initializes the magnetometer behind the parent IMU's
// auxiliary I2C master and publishes gated, axis-corrected samples to MQTT.
func RunMagProducer() error {
	log.Println("starting magnetometer producer")

	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDMag)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)

	sink := &mqttSink{client: client, topic: cfg.TopicMag, adj: mag.UnityAdjustment}

	parent, drv, err := initMagHardware(sink)
	if err != nil {
		return err
	}

	if err := bringup(drv); err != nil {
		return err
	}
	adj, calibrated := drv.Sensitivity()
	sink.SetAdjustment(adj)
	log.Printf("mag: bring-up complete, state=%s calibrated=%v adj=(%.4f %.4f %.4f)",
		drv.State(), calibrated, adj.X, adj.Y, adj.Z)

	publishEnv := cfg.BMPSPIDevice != "" && cfg.EnvSampleInterval > 0
	envEvery := 1
	if publishEnv {
		envEvery = cfg.EnvSampleInterval / cfg.MagSampleInterval
		if envEvery < 1 {
			envEvery = 1
		}
	} else {
		log.Println("env publishing disabled (no BMP_SPI_DEVICE / ENV_SAMPLE_INTERVAL)")
	}

	ticker := time.NewTicker(time.Duration(cfg.MagSampleInterval) * time.Millisecond)
	defer ticker.Stop()

	tick := 0
	for t := range ticker.C {
		tick++

		// The standing transaction keeps the shadow area fresh; we only
		// snapshot it here and hand it through the gate.
		if _, err := parent.UpdateTemperature(); err != nil {
			continue // counted and logged by the parent
		}
		var buf [mag.RawSampleSize]byte
		parent.ReadExternalSensorData(buf[:])
		raw, err := mag.DecodeRawSample(buf[:])
		if err != nil {
			log.Printf("mag decode error: %v", err)
			continue
		}
		drv.Measure(t, raw)

		if publishEnv && tick%envEvery == 0 {
			if envSample, err := sensors.ReadEnv(); err != nil {
				log.Printf("env read error: %v", err)
			} else if payload, err := json.Marshal(envSample); err != nil {
				log.Printf("env marshal error: %v", err)
			} else if token := client.Publish(cfg.TopicEnv, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("MQTT publish error (env): %v", token.Error())
			}
		}

		if tick%512 == 0 {
			discarded, published := drv.Counters()
			log.Printf("mag: published=%d discarded=%d parent_comm_errors=%d",
				published, discarded, parent.CommErrors())
		}
	}
	return nil
}
