/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command lcc runs a protocol with the agents that a run file
// describes and then reports each agent's result.
//
//   lcc -r run.yaml
//
// A run file names a protocol document and lists the agents:
//
//   protocol: pingpong.yaml
//   agents:
//     - role: pinger
//       id: p1
//     - role: ponger
//       id: q1
//       source: |
//         return {succ: function(x, y) { y.set(x.get() + 1); return TRUE; }};
//
// The event log can go to stderr (-e), a bbolt archive (-archive),
// and an MQTT topic (-mqtt-broker, -mqtt-topic).  With -http, the
// command serves the event log over a websocket at /ws and
// Prometheus metrics at /metrics.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/Comcast/lcc/crew"
	"github.com/Comcast/lcc/monitor"
	"github.com/Comcast/lcc/util"
)

func main() {
	os.Exit(lcc())
}

// lcc does the work and returns the exit status.
func lcc() int {

	var (
		runFilename  = flag.String("r", "run.yaml", "run filename (YAML)")
		confFilename = flag.String("conf", "", "optional crew configuration filename (YAML)")
		verbose      = flag.Bool("v", false, "verbose logging")
		timeout      = flag.Duration("timeout", 0, "give up after this long (0 means never)")

		events     = flag.Bool("e", false, "write events to stderr")
		eventsJSON = flag.Bool("j", false, "write events as JSON (with -e)")

		httpAddr = flag.String("http", "", "optional address for /ws and /metrics")
		linger   = flag.Bool("linger", false, "keep serving -http after the run until interrupted")

		archive = flag.String("archive", "", "optional bbolt archive filename for the event log")

		mqttBroker   = flag.String("mqtt-broker", "", "optional MQTT broker for the event log (e.g. tcp://localhost:1883)")
		mqttTopic    = flag.String("mqtt-topic", "lcc/events", "MQTT topic (TOPIC or TOPIC:QOS)")
		mqttClientID = flag.String("mqtt-client-id", "lcc", "MQTT client ID")
	)

	flag.Parse()

	util.Logging = *verbose

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if 0 < *timeout {
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	conf := crew.DefaultConf()
	if *confFilename != "" {
		var err error
		if conf, err = crew.ReadConf(*confFilename); err != nil {
			log.Fatal(err)
		}
	}
	if *verbose {
		conf.Verbose = true
	}

	run, err := LoadRun(*runFilename)
	if err != nil {
		log.Fatal(err)
	}

	p, err := run.LoadProtocol()
	if err != nil {
		log.Fatal(err)
	}
	util.Logf("loaded protocol %s", p.Name)

	c, err := crew.New(p, conf)
	if err != nil {
		log.Fatal(err)
	}

	if *events {
		c.Log.AddSink(&monitor.WriterSink{
			W:    os.Stderr,
			JSON: *eventsJSON,
		})
	}

	if *archive != "" {
		a, err := monitor.OpenArchive(*archive)
		if err != nil {
			log.Fatal(err)
		}
		defer a.Close()
		c.Log.AddSink(a)
		util.Logf("archiving run %s to %s", c.Log.Run, *archive)
	}

	if *mqttBroker != "" {
		s, err := monitor.NewMQTTSink(*mqttBroker, *mqttClientID, *mqttTopic)
		if err != nil {
			log.Fatal(err)
		}
		defer s.Close()
		c.Log.AddSink(s)
	}

	if *httpAddr != "" {
		hub := monitor.NewHub(c.Log, func() interface{} {
			return c.Snapshot()
		})
		hub.Verbose = *verbose

		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		mux.Handle("/metrics", monitor.MetricsHandler())

		server := &http.Server{
			Addr:    *httpAddr,
			Handler: mux,
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal(err)
			}
		}()
		defer func() {
			shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			server.Shutdown(shutdown)
		}()
		util.Logf("serving on %s", *httpAddr)
	}

	agents, err := run.Subscribe(ctx, c)
	if err != nil {
		log.Fatal(err)
	}

	if err = c.Run(ctx); err != nil {
		log.Fatal(err)
	}
	faulted := c.Wait()

	if err = Report(os.Stdout, agents); err != nil {
		log.Fatal(err)
	}

	if *httpAddr != "" && *linger {
		util.Logf("lingering")
		<-ctx.Done()
	}

	if faulted != nil {
		log.Printf("fault: %v", faulted)
		return 1
	}
	return 0
}
