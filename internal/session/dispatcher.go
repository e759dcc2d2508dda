package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/teilomillet/edgerunner/internal/calculator"
	"github.com/teilomillet/edgerunner/internal/metrics"
	"github.com/teilomillet/edgerunner/pkg/models"
)

// Error codes sent back to the client
const (
	CodeUnknownType    = "unknown_message_type"
	CodeInvalidPayload = "invalid_payload"
	CodeInvalidRequest = "invalid_request"
)

// Dispatcher turns calculation requests into replies. It holds no per-session
// state and is shared by every session.
type Dispatcher struct {
	defaults calculator.Defaults
	metrics  *metrics.Registry
}

// NewDispatcher creates a dispatcher applying defaults to incomplete requests
func NewDispatcher(defaults calculator.Defaults, m *metrics.Registry) *Dispatcher {
	return &Dispatcher{defaults: defaults, metrics: m}
}

// Dispatch runs the calculation named by msg.Type and wraps the result in a
// "<type>_result" message, or an error message when the request is unusable.
func (d *Dispatcher) Dispatch(msg models.ClientMessage) models.ServerMessage {
	switch msg.Type {
	case models.MessageTypeSingle, models.MessageTypeFlip, models.MessageTypeConvert,
		models.MessageTypeIndependent, models.MessageTypeExact:
	default:
		return errorReply(msg.RequestID, CodeUnknownType, fmt.Sprintf("unknown message type: %s", msg.Type))
	}

	timer := d.metrics.StartTimer(msg.Type, metrics.TransportWS)
	payload, code, err := d.calculate(msg)
	timer.Stop(err)
	if err != nil {
		return errorReply(msg.RequestID, code, err.Error())
	}

	return models.ServerMessage{
		Type:      msg.Type + models.ResultSuffix,
		RequestID: msg.RequestID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

func (d *Dispatcher) calculate(msg models.ClientMessage) (interface{}, string, error) {
	switch msg.Type {
	case models.MessageTypeSingle:
		var req models.SingleBetRequest
		if err := decode(msg.Payload, &req); err != nil {
			return nil, CodeInvalidPayload, err
		}
		resp, err := calculator.CalculateSingleBet(req, d.defaults)
		return resp, CodeInvalidRequest, err

	case models.MessageTypeFlip:
		var req models.SingleBetRequest
		if err := decode(msg.Payload, &req); err != nil {
			return nil, CodeInvalidPayload, err
		}
		resp, err := calculator.FlipSingleBet(req)
		return resp, CodeInvalidRequest, err

	case models.MessageTypeConvert:
		var req models.ConvertRequest
		if err := decode(msg.Payload, &req); err != nil {
			return nil, CodeInvalidPayload, err
		}
		resp, err := calculator.ConvertOdds(req)
		return resp, CodeInvalidRequest, err

	case models.MessageTypeIndependent:
		var req models.IndependentRequest
		if err := decode(msg.Payload, &req); err != nil {
			return nil, CodeInvalidPayload, err
		}
		resp, err := calculator.CalculateIndependent(req, d.defaults)
		return resp, CodeInvalidRequest, err

	default:
		var req models.ExactRequest
		if err := decode(msg.Payload, &req); err != nil {
			return nil, CodeInvalidPayload, err
		}
		resp, err := calculator.CalculateExact(req, d.defaults)
		if err == nil {
			d.metrics.RecordIterations(resp.Iterations)
		}
		return resp, CodeInvalidRequest, err
	}
}

func decode(payload json.RawMessage, v interface{}) error {
	if len(payload) == 0 {
		return fmt.Errorf("missing payload")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

func errorReply(requestID, code, message string) models.ServerMessage {
	return models.ServerMessage{
		Type:      models.MessageTypeError,
		RequestID: requestID,
		Payload: models.ErrorMessage{
			Code:    code,
			Message: message,
		},
		Timestamp: time.Now(),
	}
}
