// mqtt.go - MQTT client used to announce newly stored forecasts

package mqtt // Declares the package name

import ( // Import required packages
	"encoding/json" // Payload encoding
	"fmt"           // Error wrapping
	"time"          // Connect and publish timeouts

	paho "github.com/eclipse/paho.mqtt.golang" // Eclipse Paho MQTT client
	"github.com/google/uuid"                   // Unique client IDs
)

const waitTimeout = 5 * time.Second // How long to wait for broker acks

type Client struct { // Client wraps a connected Paho client
	conn paho.Client
}

func Connect(broker string) (*Client, error) { // Connect dials the broker and waits for the CONNACK
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("forecast-backend-" + uuid.NewString()[:8]).
		SetAutoReconnect(true).
		SetConnectTimeout(waitTimeout)

	conn := paho.NewClient(opts)
	token := conn.Connect()
	if !token.WaitTimeout(waitTimeout) {
		return nil, fmt.Errorf("connect to %s: timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", broker, err)
	}
	return &Client{conn: conn}, nil
}

// Publish sends payload with QoS 1. Strings and byte slices go out as-is,
// anything else as JSON.
func (c *Client) Publish(topic string, payload interface{}) error {
	body, err := Encode(payload)
	if err != nil {
		return err
	}
	token := c.conn.Publish(topic, 1, false, body)
	if !token.WaitTimeout(waitTimeout) {
		return fmt.Errorf("publish to %s: timed out", topic)
	}
	return token.Error()
}

func (c *Client) Close() { // Close disconnects, giving in-flight messages 250ms
	c.conn.Disconnect(250)
}

// Encode turns a payload into the bytes put on the wire.
func Encode(payload interface{}) ([]byte, error) {
	switch p := payload.(type) {
	case string:
		return []byte(p), nil
	case []byte:
		return p, nil
	default:
		body, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		return body, nil
	}
}
