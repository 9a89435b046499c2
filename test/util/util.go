// Package util holds fixtures shared by the integration tests: the demo
// company, a disposable Mosquitto broker and a /metrics poller.
package util

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/ridedispatch/config"
	"github.com/kilianp07/ridedispatch/core/dispatch"
)

// DemoCompanyName is the operator name used by the integration fixtures.
const DemoCompanyName = "BALEXTRANIT (U) LTD"

const (
	brokerReadyTimeout = 5 * time.Second
	pollInterval       = 50 * time.Millisecond
)

// DemoCompany returns a company with the demo fleet added in order.
func DemoCompany(opts ...dispatch.Option) (*dispatch.Company, error) {
	c := dispatch.NewCompany(DemoCompanyName, opts...)
	vehicles, err := config.FleetConfig{Vehicles: config.DemoFleet}.Build()
	if err != nil {
		return nil, err
	}
	for _, v := range vehicles {
		if _, err := c.AddVehicle(v); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// FreeAddr returns a loopback address with a port that was free when probed.
func FreeAddr() (string, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer l.Close()
	return l.Addr().String(), nil
}

// WaitForMetric scrapes metricsURL until a line contains substr.
func WaitForMetric(ctx context.Context, metricsURL, substr string) error {
	tick := time.NewTicker(pollInterval)
	defer tick.Stop()
	for {
		body, err := scrape(ctx, metricsURL)
		if err == nil && strings.Contains(body, substr) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("metric %q not found: %w", substr, ctx.Err())
		case <-tick.C:
		}
	}
}

func scrape(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	return string(b), err
}

const mosquittoConf = `listener 1883
allow_anonymous true
persistence false
log_dest stdout
`

// Broker is a running Mosquitto container.
type Broker struct {
	URL  string
	cont tc.Container
}

// Close terminates the container.
func (b *Broker) Close() {
	_ = b.cont.Terminate(context.Background())
}

// StartMosquitto runs an anonymous Mosquitto broker and waits until it
// accepts MQTT connections.
func StartMosquitto(ctx context.Context) (*Broker, error) {
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{{
			Reader:            strings.NewReader(mosquittoConf),
			ContainerFilePath: "/mosquitto/config/mosquitto.conf",
			FileMode:          0o644,
		}},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		return nil, err
	}
	b := &Broker{cont: cont}
	endpoint, err := cont.PortEndpoint(ctx, "1883/tcp", "tcp")
	if err != nil {
		b.Close()
		return nil, err
	}
	b.URL = endpoint

	readyCtx, cancel := context.WithTimeout(ctx, brokerReadyTimeout)
	defer cancel()
	if err := probeBroker(readyCtx, b.URL); err != nil {
		b.Close()
		return nil, fmt.Errorf("broker not ready: %w", err)
	}
	return b, nil
}

func probeBroker(ctx context.Context, url string) error {
	opts := paho.NewClientOptions().AddBroker(url).SetClientID("ready-probe").SetConnectTimeout(time.Second)
	tick := time.NewTicker(pollInterval)
	defer tick.Stop()
	for {
		cli := paho.NewClient(opts)
		if tok := cli.Connect(); tok.Wait() && tok.Error() == nil {
			cli.Disconnect(100)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
}
