// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// oledmon scans the I²C bus, shows a system monitor screen on a SH1106 OLED
// display and idles until interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/GermanBionicSystems/oledmon/board"
	"github.com/GermanBionicSystems/oledmon/oledsim"
	"github.com/GermanBionicSystems/oledmon/sysmon"
	"github.com/sirupsen/logrus"
)

func main() {
	// Logger
	logrus.SetFormatter(&logrus.TextFormatter{ForceColors: true})

	mainCommand := filepath.Base(os.Args[0])
	debugMode := flag.Bool("d", false, "Enable debug mode")
	simulationMode := flag.Bool("s", false, "Emulate the display in the terminal instead of using the I²C bus")
	configFile := flag.String("c", "oledmon.yaml", "Location of the config file")
	pngFile := flag.String("png", "", "In simulation mode, also save the screen to this PNG file")
	flag.Usage = func() {
		fmt.Printf("\nUsage: %s [OPTIONS]\n", mainCommand)
		fmt.Printf("\nShow a system monitor on a SH1106 OLED display\n")
		fmt.Printf("\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *debugMode {
		logrus.SetLevel(logrus.DebugLevel)
		logrus.SetFormatter(&logrus.TextFormatter{ForceColors: true, FullTimestamp: true, TimestampFormat: time.RFC3339Nano})
		logrus.Printf("Debug mode activated")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := mainImpl(ctx, *configFile, *simulationMode, *pngFile); err != nil {
		logrus.Fatal(err)
	}
}

func mainImpl(ctx context.Context, configFile string, simulate bool, pngFile string) error {
	log := logrus.StandardLogger()
	cfg, err := sysmon.LoadConfig(configFile)
	if err != nil {
		return err
	}

	var panel *oledsim.Panel
	var p *board.Peripherals
	if simulate {
		panel = oledsim.New(&oledsim.Opts{Addr: cfg.Address})
		p, err = board.TakeBus(panel)
	} else {
		p, err = board.Take(cfg.Bus)
	}
	if err != nil {
		return err
	}
	defer p.Close()

	stats := sysmon.ResolveStats(ctx, &cfg, log)
	d, _, err := sysmon.Boot(p.I2C0, &cfg, stats, log)
	if err != nil {
		return err
	}
	defer d.Close()

	if panel != nil {
		if err := panel.Render(); err != nil {
			return err
		}
		if pngFile != "" {
			if err := panel.SavePNG(pngFile, 4); err != nil {
				return err
			}
		}
	}

	err = sysmon.Idle(ctx, cfg.IdleInterval(), log)
	log.Infof("Stopping: %v", err)
	if herr := d.Halt(); herr != nil {
		return herr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
