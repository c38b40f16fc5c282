//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"carbonmon/internal/clock"
	"carbonmon/internal/store"
)

const brokerPort = "1883/tcp"

func TestStore_WriteAgainstRealBroker(t *testing.T) {
	ctx := context.Background()
	addr := startBroker(t)

	st := store.NewMQTT(store.Options{
		Address:       addr,
		ClientID:      "carbonmon-e2e",
		ReadyInterval: 250 * time.Millisecond,
	}, clock.NewMonotonic(), slog.Default())
	t.Cleanup(st.Close)

	if err := st.EstablishSession(ctx, 20); err != nil {
		t.Fatalf("establish session: %v", err)
	}
	if !st.IsReady() {
		t.Fatalf("store not ready after session establishment")
	}

	received := make(chan []byte, 1)
	sub := subscriber(t, addr, "carbon_data/#", received)
	defer sub.Disconnect(250)

	want := store.Record{
		CO2:       800,
		Humidity:  400,
		Credits:   400.0,
		Emissions: 80.0,
		Offset:    true,
		Timestamp: 12345,
	}
	if err := st.Write("carbon_data/12345", want); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case payload := <-received:
		var got store.Record
		if err := json.Unmarshal(payload, &got); err != nil {
			t.Fatalf("decode record: %v", err)
		}
		if got != want {
			t.Fatalf("record = %+v, want %+v", got, want)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("no record arrived at the broker")
	}
}

func TestStore_DegradedModeWhenBrokerAbsent(t *testing.T) {
	st := store.NewMQTT(store.Options{
		Address:       "127.0.0.1:1", // nothing listens here
		ClientID:      "carbonmon-e2e-degraded",
		ReadyInterval: 50 * time.Millisecond,
	}, clock.NewMonotonic(), slog.Default())
	t.Cleanup(st.Close)

	err := st.EstablishSession(context.Background(), 3)
	if err == nil {
		t.Fatalf("establish session succeeded against a dead address")
	}
	if st.IsReady() {
		t.Fatalf("store reports ready with no broker")
	}
}

func startBroker(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2",
		ExposedPorts: []string{brokerPort},
		// The stock image ships a no-auth config for exactly this use.
		Cmd:        []string{"mosquitto", "-c", "/mosquitto-no-auth.conf"},
		WaitingFor: wait.ForListeningPort(nat.Port(brokerPort)).WithStartupTimeout(30 * time.Second),
	}

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start mosquitto container: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Terminate(ctx)
	})

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := c.MappedPort(ctx, nat.Port(brokerPort))
	if err != nil {
		t.Fatalf("container port: %v", err)
	}
	return fmt.Sprintf("%s:%s", host, port.Port())
}

func subscriber(t *testing.T, addr, topic string, received chan<- []byte) mqtt.Client {
	t.Helper()

	opts := mqtt.NewClientOptions()
	opts.AddBroker("tcp://" + addr)
	opts.SetClientID("carbonmon-e2e-sub")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); !token.WaitTimeout(10*time.Second) || token.Error() != nil {
		t.Fatalf("subscriber connect: %v", token.Error())
	}
	token := client.Subscribe(topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		received <- msg.Payload()
	})
	if !token.WaitTimeout(10*time.Second) || token.Error() != nil {
		t.Fatalf("subscribe: %v", token.Error())
	}
	return client
}
