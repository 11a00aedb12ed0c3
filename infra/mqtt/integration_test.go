package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/prodseq/core/model"
	"github.com/kilianp07/prodseq/core/planner"
	"github.com/kilianp07/prodseq/core/sequencing"
)

func startMosquitto(t *testing.T) string {
	t.Helper()
	conf := filepath.Join(t.TempDir(), "mosquitto.conf")
	if err := os.WriteFile(conf, []byte("listener 1883\nallow_anonymous true\npersistence false\n"), 0o644); err != nil {
		t.Fatalf("write conf: %v", err)
	}
	ctx := context.Background()
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "eclipse-mosquitto:2.0",
			ExposedPorts: []string{"1883/tcp"},
			WaitingFor:   wait.ForListeningPort("1883/tcp"),
			Files: []tc.ContainerFile{{
				HostFilePath:      conf,
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0o644,
			}},
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start container: %v", err)
	}
	t.Cleanup(func() { _ = cont.Terminate(context.Background()) })

	host, err := cont.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := cont.MappedPort(ctx, "1883")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	return fmt.Sprintf("tcp://%s:%s", host, port.Port())
}

// TestIntegration publishes a real plan through a Mosquitto broker.
func TestIntegration(t *testing.T) {
	if os.Getenv("DOCKER_AVAILABLE") != "true" && os.Getenv("DOCKER_AVAILABLE") != "1" {
		t.Skip("docker not available")
	}
	broker := startMosquitto(t)

	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("sub"))
	var connectErr error
	for i := 0; i < 5; i++ {
		if tok := sub.Connect(); tok.Wait() && tok.Error() == nil {
			connectErr = nil
			break
		} else {
			connectErr = tok.Error()
		}
		time.Sleep(500 * time.Millisecond)
	}
	if connectErr != nil {
		t.Fatalf("failed to connect: %v", connectErr)
	}
	defer sub.Disconnect(250)

	msgs := make(chan paho.Message, 4)
	if tok := sub.Subscribe("it/#", 1, func(_ paho.Client, m paho.Message) { msgs <- m }); tok.Wait() && tok.Error() != nil {
		t.Fatalf("subscribe: %v", tok.Error())
	}

	pub, err := NewPahoPublisher(Config{Broker: broker, ClientID: "pub", TopicPrefix: "it", QoS: 1}, nil)
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	defer pub.Disconnect()

	prob := model.Problem{
		Penalty: [][]int{{0, 10}, {10, 0}},
		Cost:    [][]int{{0, 1}, {1, 0}},
		Limits:  model.DefaultLimits,
		Split:   model.DefaultSplit,
		Lines:   []model.Line{{Name: "a", Demand: [][]int{{100, 50}, {20, 80}}}},
	}
	plan, err := planner.New(sequencing.Greedy{}, planner.WithRunID(func() string { return "r1" })).
		Plan(context.Background(), prob, []model.Objective{model.ObjectiveCombined})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if err := pub.PublishPlan(context.Background(), plan); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case m := <-msgs:
		if m.Topic() != "it/r1/a/combined" {
			t.Fatalf("unexpected topic %s", m.Topic())
		}
		var got ResultMessage
		if err := json.Unmarshal(m.Payload(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Strategy != sequencing.NameGreedy || len(got.Days) != 2 {
			t.Fatalf("unexpected payload %+v", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for message")
	}
}
