// Copyright (c) 2026 Ecols
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Ecols/Firmware/internal/config"
	"github.com/Ecols/Firmware/internal/mag"
	"github.com/Ecols/Firmware/internal/sensors"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// RegisterCmd is a websocket command for the register debug console.
type RegisterCmd struct {
	Action  string `json:"action"` // "read", "write", "read_all", "master", "status"
	Address string `json:"addr,omitempty"`
	Value   string `json:"value,omitempty"`
}

// RegisterResponse is the websocket reply.
type RegisterResponse struct {
	Type        string                 `json:"type"` // "register_data", "register_map", "status", "error"
	Device      string                 `json:"device,omitempty"`
	Address     string                 `json:"addr,omitempty"`
	Value       string                 `json:"value,omitempty"`
	Registers   map[string]string      `json:"registers,omitempty"`
	RegisterMap []sensors.RegisterInfo `json:"register_map,omitempty"`
	State       string                 `json:"state,omitempty"`
	Discarded   uint64                 `json:"discarded"`
	Published   uint64                 `json:"published"`
	CommErrors  uint64                 `json:"comm_errors"`
	Adjustment  *mag.Adjustment        `json:"adjustment,omitempty"`
	Message     string                 `json:"message,omitempty"`
	Timestamp   string                 `json:"timestamp,omitempty"`
}

// DebugServer serves the register debug console over websocket. All register
// traffic goes through the passthrough path, so every manual access tears
// down the standing sample transaction; the server re-arms it after each
// command.
type DebugServer struct {
	parent *sensors.MPU9250
	drv    *sensors.AK8963
}

func NewDebugServer(parent *sensors.MPU9250, drv *sensors.AK8963) *DebugServer {
	return &DebugServer{parent: parent, drv: drv}
}

func parseByte(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid register byte %q: %w", s, err)
	}
	return byte(v), nil
}

// HandleWS upgrades the connection and serves register commands until the
// client goes away.
func (s *DebugServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("debug: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	log.Printf("debug: client connected from %s", r.RemoteAddr)

	for {
		var cmd RegisterCmd
		if err := conn.ReadJSON(&cmd); err != nil {
			log.Printf("debug: client disconnected: %v", err)
			return
		}

		resp := s.execute(cmd)
		resp.Timestamp = time.Now().Format(time.RFC3339)
		if err := conn.WriteJSON(resp); err != nil {
			log.Printf("debug: write failed: %v", err)
			return
		}
	}
}

func (s *DebugServer) execute(cmd RegisterCmd) RegisterResponse {
	switch cmd.Action {
	case "read":
		reg, err := parseByte(cmd.Address)
		if err != nil {
			return errResponse(err)
		}
		val := s.drv.ReadRegister(reg)
		s.drv.RearmSampleTransaction()
		return RegisterResponse{
			Type:    "register_data",
			Device:  "ak8963",
			Address: fmt.Sprintf("0x%02X", reg),
			Value:   fmt.Sprintf("0x%02X", val),
		}

	case "write":
		reg, err := parseByte(cmd.Address)
		if err != nil {
			return errResponse(err)
		}
		val, err := parseByte(cmd.Value)
		if err != nil {
			return errResponse(err)
		}
		s.drv.WriteRegister(reg, val)
		s.drv.RearmSampleTransaction()
		return RegisterResponse{
			Type:    "register_data",
			Device:  "ak8963",
			Address: fmt.Sprintf("0x%02X", reg),
			Value:   fmt.Sprintf("0x%02X", val),
		}

	case "read_all":
		regs := make(map[string]string)
		for _, info := range sensors.AK8963RegisterMap() {
			val := s.drv.ReadRegister(info.Address)
			regs[fmt.Sprintf("0x%02X", info.Address)] = fmt.Sprintf("0x%02X", val)
		}
		s.drv.RearmSampleTransaction()
		return RegisterResponse{
			Type:        "register_map",
			Device:      "ak8963",
			Registers:   regs,
			RegisterMap: sensors.AK8963RegisterMap(),
		}

	case "master":
		// Parent-side registers are read directly, not through the slot.
		regs := make(map[string]string)
		for _, info := range sensors.MasterRegisterMap() {
			var b [1]byte
			s.parent.Read(info.Address, b[:])
			regs[fmt.Sprintf("0x%02X", info.Address)] = fmt.Sprintf("0x%02X", b[0])
		}
		return RegisterResponse{
			Type:        "register_map",
			Device:      "mpu9250",
			Registers:   regs,
			RegisterMap: sensors.MasterRegisterMap(),
		}

	case "status":
		discarded, published := s.drv.Counters()
		resp := RegisterResponse{
			Type:       "status",
			State:      s.drv.State().String(),
			Discarded:  discarded,
			Published:  published,
			CommErrors: s.parent.CommErrors(),
		}
		if adj, ok := s.drv.Sensitivity(); ok {
			resp.Adjustment = &adj
		}
		return resp

	default:
		return errResponse(fmt.Errorf("unknown action %q", cmd.Action))
	}
}

func errResponse(err error) RegisterResponse {
	return RegisterResponse{Type: "error", Message: err.Error()}
}

// discardSink drops samples; the debug tool has no publishing pipeline.
type discardSink struct{}

func (discardSink) Publish(mag.Sample) {}

// RunMagDebug brings the magnetometer up and serves the register debug
// console.
func RunMagDebug() error {
	cfg := config.Get()

	parent, drv, err := initMagHardware(discardSink{})
	if err != nil {
		return err
	}
	if err := bringup(drv); err != nil {
		// Keep serving: the console is the tool to diagnose exactly this.
		log.Printf("debug: bring-up failed, console still available: %v", err)
	}

	srv := NewDebugServer(parent, drv)
	http.HandleFunc("/ws/registers", srv.HandleWS)
	http.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		resp := srv.execute(RegisterCmd{Action: "status"})
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Printf("debug: json encode error: %v", err)
		}
	})
	http.Handle("/", http.FileServer(http.Dir("web")))

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("debug: register console listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
