package main

import (
	"os"
	"strings"

	"qkhe/internal/config"
	"qkhe/internal/pipeline"
	"qkhe/internal/storage"
)

// Test hooks.
var (
	loadConfig = config.Load
	runExport  = pipeline.Run
	openTarget = storage.Open
	environ    = processEnv
)

// processEnv returns the process environment as a map.
func processEnv() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}
