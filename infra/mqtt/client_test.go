package mqtt

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/prodseq/core/events"
	"github.com/kilianp07/prodseq/core/model"
	coremqtt "github.com/kilianp07/prodseq/core/mqtt"
	"github.com/kilianp07/prodseq/core/planner"
)

// helper to generate self-signed cert
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = dir + "/cert.pem"
	keyFile = dir + "/key.pem"
	caFile = dir + "/ca.pem"
	for path, data := range map[string][]byte{certFile: certPEM, keyFile: keyPEM, caFile: certPEM} {
		if err := os.WriteFile(path, data, 0o600); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	tlsCfg, err := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load tls: %v", err)
	}
	if len(tlsCfg.Certificates) != 1 || tlsCfg.RootCAs == nil {
		t.Fatalf("certs not loaded: %+v", tlsCfg)
	}

	// Server-only TLS needs no client pair.
	tlsCfg, err = Config{UseTLS: true, CABundle: ca}.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load ca only: %v", err)
	}
	if len(tlsCfg.Certificates) != 0 {
		t.Fatalf("unexpected client certificate")
	}

	if _, err := (Config{UseTLS: true}).LoadTLSConfig(); err == nil {
		t.Fatal("expected missing ca_bundle error")
	}
	if _, err := (Config{UseTLS: true, CABundle: key}).LoadTLSConfig(); err == nil {
		t.Fatal("expected empty bundle error")
	}
}

func TestNewClientOptions(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p", LWTTopic: "lwt", LWTPayload: "bye", QoS: 1})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("auth not set")
	}
	if !opts.WillEnabled || opts.WillTopic != "lwt" || string(opts.WillPayload) != "bye" || opts.WillQos != 1 {
		t.Fatalf("will options incorrect")
	}
	if _, err := NewClientOptions(Config{Broker: "ssl://x", UseTLS: true}); err == nil {
		t.Fatal("expected tls error")
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	if cfg.TopicPrefix != DefaultTopicPrefix || cfg.ClientID != "prodseq" || cfg.MaxRetries != 3 || cfg.BackoffMS != 100 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestNew_NoBrokerIsNop(t *testing.T) {
	pub, err := New(Config{}, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := pub.(coremqtt.NopPublisher); !ok {
		t.Fatalf("expected NopPublisher, got %T", pub)
	}
}

func samplePlan() *planner.Plan {
	return &planner.Plan{
		RunID: "run/1",
		Lines: 2,
		Results: []planner.LineResult{
			{Line: "north", Objective: model.ObjectiveTime, Requested: "auto", Result: model.ScheduleResult{Strategy: "greedy", Score: 10, EndingBacklog: []int{0}}},
			{Line: "south+east", Objective: model.ObjectiveCost, Requested: "auto", Err: errors.New("failed")},
			{Line: "south+east", Objective: model.ObjectiveLostSales, Requested: "auto", Result: model.ScheduleResult{Strategy: "exact", TotalLostSales: 4}},
		},
	}
}

func withMock(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() { newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) } })
}

func TestPublishPlan_TopicsAndPayloads(t *testing.T) {
	mc := &mockClient{}
	withMock(t, mc)
	pub, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883", TopicPrefix: "plant/", QoS: 2, Retain: true}, nil)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := pub.PublishPlan(context.Background(), samplePlan()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	msgs := mc.messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].topic != "plant/run_1/north/time" || msgs[1].topic != "plant/run_1/south_east/lostSales" {
		t.Fatalf("unexpected topics %q %q", msgs[0].topic, msgs[1].topic)
	}
	if msgs[0].qos != 2 || !msgs[0].retained {
		t.Fatalf("qos/retain not applied")
	}
	var got ResultMessage
	if err := json.Unmarshal(msgs[1].payload, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RunID != "run/1" || got.Strategy != "exact" || got.Objective != model.ObjectiveLostSales || got.TotalLostSales != 4 {
		t.Fatalf("unexpected payload %+v", got)
	}
}

type recordMonitor struct {
	mu   sync.Mutex
	err  error
	tags map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err, r.tags = err, tags
}
func (r *recordMonitor) Recover()            {}
func (r *recordMonitor) Flush(time.Duration) {}

func TestPublish_Retries(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("net fail"), nil}}
	withMock(t, mc)
	pub, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1}, nil)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := pub.PublishSummary(context.Background(), events.PlanEvent{RunID: "r"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if n := len(mc.messages()); n != 2 {
		t.Fatalf("expected 2 attempts, got %d", n)
	}
}

func TestPublish_ErrorCaptured(t *testing.T) {
	fail := fmt.Errorf("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail, fail}}
	withMock(t, mc)
	mon := &recordMonitor{}
	pub, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 2, BackoffMS: 1}, mon)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	err = pub.PublishSummary(context.Background(), events.PlanEvent{RunID: "r"})
	if !errors.Is(err, coremqtt.ErrPublish) {
		t.Fatalf("expected ErrPublish, got %v", err)
	}
	if len(mc.messages()) != 3 {
		t.Fatalf("expected 3 attempts")
	}
	if mon.err == nil || mon.tags["module"] != "mqtt" || mon.tags["topic"] != DefaultTopicPrefix+"/r/summary" {
		t.Fatalf("error not captured: %+v", mon.tags)
	}
}

func TestPublish_CanceledDuringBackoff(t *testing.T) {
	fail := fmt.Errorf("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail}}
	withMock(t, mc)
	pub, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 60000}, nil)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pub.PublishPlan(ctx, samplePlan()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestForwardSummaries(t *testing.T) {
	mc := &mockClient{}
	withMock(t, mc)
	pub, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883"}, nil)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	sub := make(chan events.PlanEvent, 2)
	sub <- events.PlanEvent{RunID: "a", Results: 3, Duration: 1500 * time.Millisecond}
	sub <- events.PlanEvent{RunID: "b"}
	close(sub)
	select {
	case <-ForwardSummaries(context.Background(), sub, pub):
	case <-time.After(2 * time.Second):
		t.Fatal("forwarder did not stop")
	}
	msgs := mc.messages()
	if len(msgs) != 2 || msgs[0].topic != DefaultTopicPrefix+"/a/summary" {
		t.Fatalf("unexpected messages %+v", msgs)
	}
	var got SummaryMessage
	if err := json.Unmarshal(msgs[0].payload, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Results != 3 || got.DurationMS != 1500 {
		t.Fatalf("unexpected summary %+v", got)
	}
}

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// mockClient implements pahoClient for tests
type mockClient struct {
	mu          sync.Mutex
	opts        *paho.ClientOptions
	published   []published
	publishErrs []error
}

func (m *mockClient) IsConnected() bool { return true }
func (m *mockClient) Connect() paho.Token {
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(nil)
	}
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) {}
func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, published{topic, qos, retained, payload.([]byte)})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}

func (m *mockClient) messages() []published {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]published(nil), m.published...)
}

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }
