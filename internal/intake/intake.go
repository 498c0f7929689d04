// Package intake owns the upstream MQTT subscription: it decodes each
// inbound telemetry message into a reading, stores it, and hands the
// stored record to the broadcast hub.
package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"temp-monitor/internal/model"
	"temp-monitor/internal/store"
)

// Options configures the upstream broker connection. All values come
// from the config file, never from compiled-in constants.
type Options struct {
	BrokerHost        string
	BrokerPort        int
	Username          string
	Password          string
	ClientID          string
	Topic             string
	KeepAlive         time.Duration
	ReconnectInterval time.Duration
	StoreTimeout      time.Duration
}

// Broadcaster receives every stored reading for fan-out.
type Broadcaster interface {
	Broadcast(r model.Reading)
}

type readingStore interface {
	CreateSensorReading(ctx context.Context, nr store.NewReading) (model.Reading, error)
}

// Intake maintains exactly one logical subscription to the configured
// topic for the lifetime of the process.
type Intake struct {
	opts   Options
	store  readingStore
	hub    Broadcaster
	client mqtt.Client
}

// New wires the intake. KeepAlive and ReconnectInterval are taken as
// given; config.LoadYAML owns their defaults.
func New(opts Options, st readingStore, hub Broadcaster) *Intake {
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 10 * time.Second
	}
	return &Intake{opts: opts, store: st, hub: hub}
}

// Start connects to the broker in the background. An unreachable broker
// is logged, never fatal; the paho client retries at a fixed interval
// until it gets through, and reconnects the same way after drops.
func (in *Intake) Start() {
	o := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", in.opts.BrokerHost, in.opts.BrokerPort)).
		SetClientID(in.opts.ClientID).
		SetUsername(in.opts.Username).
		SetPassword(in.opts.Password).
		SetKeepAlive(in.opts.KeepAlive).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(in.opts.ReconnectInterval).
		SetMaxReconnectInterval(in.opts.ReconnectInterval)

	o.OnConnect = func(c mqtt.Client) {
		log.Printf("intake: connected to %s:%d", in.opts.BrokerHost, in.opts.BrokerPort)
		token := c.Subscribe(in.opts.Topic, 0, in.handleMessage)
		if token.Wait() && token.Error() != nil {
			// not fatal: the subscription is retried on the next reconnect
			log.Printf("intake: subscribe %s: %v", in.opts.Topic, token.Error())
			return
		}
		log.Printf("intake: subscribed to %s", in.opts.Topic)
	}
	o.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Printf("intake: connection lost: %v", err)
	}

	in.client = mqtt.NewClient(o)
	token := in.client.Connect()
	go func() {
		if token.Wait() && token.Error() != nil {
			log.Printf("intake: connect: %v", token.Error())
		}
	}()
}

// Stop disconnects from the broker, allowing in-flight work to finish.
func (in *Intake) Stop() {
	if in.client != nil {
		in.client.Disconnect(250)
	}
}

// handleMessage processes one inbound telemetry message. A malformed
// payload is dropped and logged; it never affects the next message.
func (in *Intake) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	nr, err := decodeTelemetry(msg.Payload())
	if err != nil {
		log.Printf("intake: drop message on %s: %v", msg.Topic(), err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), in.opts.StoreTimeout)
	defer cancel()

	stored, err := in.store.CreateSensorReading(ctx, nr)
	if err != nil {
		// nothing upstream to answer: log and drop
		log.Printf("intake: store reading: %v", err)
		return
	}
	in.hub.Broadcast(stored)
}

// telemetryPayload mirrors what the device publishes. Every field is
// optional; present fields must be numeric.
type telemetryPayload struct {
	SuhuDHT  *float64 `json:"suhuDHT"`
	SuhuLM35 *float64 `json:"suhuLM35"`
	LED      *float64 `json:"LED"`
}

// decodeTelemetry validates one payload into a reading candidate. An
// empty object is valid and yields an all-null reading with LED level 0.
func decodeTelemetry(payload []byte) (store.NewReading, error) {
	var tp telemetryPayload
	if err := json.Unmarshal(payload, &tp); err != nil {
		return store.NewReading{}, fmt.Errorf("decode telemetry: %w", err)
	}

	nr := store.NewReading{
		DhtTemperature:  tp.SuhuDHT,
		Lm35Temperature: tp.SuhuLM35,
	}
	if tp.LED != nil {
		led := *tp.LED
		// the range guard also keeps int(led) from overflowing
		if led != math.Trunc(led) || led < 0 || led > math.MaxInt32 {
			return store.NewReading{}, fmt.Errorf("decode telemetry: invalid LED level %v", led)
		}
		nr.LedLevel = int(led)
	}
	return nr, nil
}
