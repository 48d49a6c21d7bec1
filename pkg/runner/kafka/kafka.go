// SPDX-License-Identifier: Apache-2.0

// Package kafka implements the Kafka runner. A step's rendered source is a
// small declarative line-oriented format describing topics to create or
// delete: "create <topic> <partitions> <replication-factor>" or
// "delete <topic>", one per line.
package kafka

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/waypointdb/waypoint/pkg/config"
	"github.com/waypointdb/waypoint/pkg/migrations"
	"github.com/waypointdb/waypoint/pkg/reserved"
	"github.com/waypointdb/waypoint/pkg/runner"
)

func init() {
	runner.Register(reserved.Kafka, New)
}

// Runner applies steps as topic administration commands against a Kafka
// broker.
type Runner struct {
	addr string
	conn *kafkago.Conn
}

// New dials the broker described by cfg. The connection is kept open for
// the lifetime of the runner and used to issue controller requests.
func New(name string, cfg config.RunnerConfiguration) (runner.Runner, error) {
	addr := fmt.Sprintf("%s:%d", cfg.IPOrHostname, cfg.Port)
	conn, err := kafkago.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	controller, err := conn.Controller()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	_ = conn.Close()

	controllerConn, err := kafkago.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return nil, err
	}

	return &Runner{addr: addr, conn: controllerConn}, nil
}

// Apply executes each topic-administration line of renderedSource in
// order, stopping at the first error.
func (r *Runner) Apply(ctx context.Context, _ migrations.Direction, renderedSource string) error {
	scanner := bufio.NewScanner(strings.NewReader(renderedSource))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := r.applyLine(line); err != nil {
			return migrations.RunnerError{Runner: reserved.Kafka, Reason: fmt.Sprintf("executing %q", line), Cause: err}
		}
	}
	return scanner.Err()
}

func (r *Runner) applyLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch strings.ToLower(fields[0]) {
	case "create":
		if len(fields) != 4 {
			return fmt.Errorf(`"create" requires <topic> <partitions> <replication-factor>`)
		}
		partitions, err := strconv.Atoi(fields[2])
		if err != nil {
			return err
		}
		replication, err := strconv.Atoi(fields[3])
		if err != nil {
			return err
		}
		return r.conn.CreateTopics(kafkago.TopicConfig{
			Topic:             fields[1],
			NumPartitions:     partitions,
			ReplicationFactor: replication,
		})
	case "delete":
		if len(fields) != 2 {
			return fmt.Errorf(`"delete" requires <topic>`)
		}
		return r.conn.DeleteTopics(fields[1])
	default:
		return fmt.Errorf("unrecognized command %q", fields[0])
	}
}

func (r *Runner) Close() error {
	return r.conn.Close()
}
