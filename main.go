/*
Copyright 2023 Apoxy, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/apoxy-dev/apoxy-static/pkg/cmd"
)

func main() {
	// Sentry is initialized by commands that have a DSN configured; flushing
	// an uninitialized client is a no-op.
	defer sentry.Flush(5 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	// Intercept SIGINT and SIGTERM so the server can drain in-flight
	// connections before exiting.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()

	if err := cmd.ExecuteContext(ctx); err != nil {
		sentry.CaptureException(err)
		sentry.Flush(5 * time.Second)
		log.Fatalf("Error: %s", err)
	}
}
