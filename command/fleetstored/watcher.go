// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"path/filepath"

	"github.com/bitmark-inc/logger"
	"github.com/fsnotify/fsnotify"
)

// watch the configuration file so an operator editing it gets an
// immediate reminder that the daemon reads it only at startup
func startConfigurationWatcher(configurationFile string) (*fsnotify.Watcher, error) {
	filePath, err := filepath.Abs(filepath.Clean(configurationFile))
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	log := logger.New("config-watcher")

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					log.Warnf("configuration %q changed, restart to apply", filePath)
				}
				if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
					log.Warnf("configuration %q removed", filePath)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Errorf("watch error: %s", err)
			}
		}
	}()

	if err := watcher.Add(filePath); err != nil {
		watcher.Close()
		return nil, err
	}
	return watcher, nil
}
