package monitor

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTSink publishes events to an MQTT topic.  Publishing doesn't
// wait for the broker.
type MQTTSink struct {
	Client mqtt.Client
	Topic  string
	QoS    byte

	// Quiesce is the disconnection quiescence in milliseconds.
	Quiesce uint
}

// ParseTopic extracts an optional QoS from a topic of the form
// TOPIC:QOS.
func ParseTopic(s string) (string, byte, error) {
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return s, 0, nil
	}
	n, err := strconv.Atoi(s[i+1:])
	if err != nil || n < 0 || 2 < n {
		return "", 0, fmt.Errorf("bad QoS in topic %q", s)
	}
	return s[:i], byte(n), nil
}

// NewMQTTSink connects to the broker.  The topic can specify a QoS
// (see ParseTopic).
func NewMQTTSink(broker, clientID, topic string) (*MQTTSink, error) {
	topic, qos, err := ParseTopic(topic)
	if err != nil {
		return nil, err
	}

	mqtt.ERROR = log.New(os.Stderr, "mqtt.error", 0)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetKeepAlive(10 * time.Second)
	opts.AutoReconnect = true
	opts.CleanSession = true
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Printf("MQTT connection lost: %s", err)
	}

	s := &MQTTSink{
		Client:  mqtt.NewClient(opts),
		Topic:   topic,
		QoS:     qos,
		Quiesce: 100,
	}

	if token := s.Client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	return s, nil
}

func (s *MQTTSink) Emit(e Event) error {
	js, err := json.Marshal(&e)
	if err != nil {
		return err
	}
	s.Client.Publish(s.Topic, s.QoS, false, js)
	return nil
}

// Close disconnects from the broker.
func (s *MQTTSink) Close() {
	s.Client.Disconnect(s.Quiesce)
}
