package amqp

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrIncompleteAlert marks a decoded alert without an id or text.
var ErrIncompleteAlert = errors.New("alert message needs id and text")

// AlertMessage carries one warning or critical statement raised when a
// dataset is loaded.
type AlertMessage struct {
	ID        string    `json:"id"`
	DatasetID string    `json:"dataset_id"`
	Source    string    `json:"source"`
	Severity  string    `json:"severity"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

func NewAlertMessage(datasetID, source, severity, text string) *AlertMessage {
	return &AlertMessage{
		ID:        uuid.NewString(),
		DatasetID: datasetID,
		Source:    source,
		Severity:  severity,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
}

// Validate reports ErrIncompleteAlert for messages a consumer cannot show.
func (m *AlertMessage) Validate() error {
	if m.ID == "" || strings.TrimSpace(m.Text) == "" {
		return ErrIncompleteAlert
	}
	return nil
}

func (m *AlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AlertMessageFromJSON decodes a delivery body.
func AlertMessageFromJSON(data []byte) (*AlertMessage, error) {
	msg := new(AlertMessage)
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
