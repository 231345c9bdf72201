package http

import (
	"encoding/json"

	"github.com/unsentapp/unsent-server/internal/core"
	"github.com/unsentapp/unsent-server/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeHello:
		var hello proto.HelloData
		if err := json.Unmarshal(inbound.Data, &hello); err != nil {
			return nil, nil, err
		}
		return &core.Command{Kind: core.CommandHello, ClientID: hello.ClientID}, nil, nil

	case proto.InboundTypeGetActiveStars:
		return &core.Command{Kind: core.CommandGetActiveStars}, nil, nil

	case proto.InboundTypeRegisterStar:
		var reg proto.RegisterStarData
		if err := json.Unmarshal(inbound.Data, &reg); err != nil {
			return nil, nil, err
		}
		if reg.StarID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "star_id is required"}, nil
		}
		return &core.Command{Kind: core.CommandRegisterStar, StarID: reg.StarID}, nil, nil

	case proto.InboundTypeDeregisterStar:
		return &core.Command{Kind: core.CommandDeregisterStar}, nil, nil

	case proto.InboundTypeRequestThread:
		var req proto.RequestThreadData
		if err := json.Unmarshal(inbound.Data, &req); err != nil {
			return nil, nil, err
		}
		if req.StarID == "" || req.RequesterStarID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "star_id and requester_star_id are required"}, nil
		}
		return &core.Command{
			Kind:            core.CommandRequestThread,
			StarID:          req.StarID,
			RequesterStarID: req.RequesterStarID,
		}, nil, nil

	case proto.InboundTypeRespondThread:
		var resp proto.RespondThreadData
		if err := json.Unmarshal(inbound.Data, &resp); err != nil {
			return nil, nil, err
		}
		if resp.RequestID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "request_id is required"}, nil
		}
		return &core.Command{
			Kind:      core.CommandRespondThread,
			RequestID: resp.RequestID,
			Accepted:  resp.Accepted,
		}, nil, nil

	case proto.InboundTypeJoinThread:
		var ref proto.ThreadRefData
		if err := json.Unmarshal(inbound.Data, &ref); err != nil {
			return nil, nil, err
		}
		if ref.ThreadID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "thread_id is required"}, nil
		}
		return &core.Command{Kind: core.CommandJoinThread, ThreadID: ref.ThreadID}, nil, nil

	case proto.InboundTypeLeaveThread:
		var ref proto.ThreadRefData
		if err := json.Unmarshal(inbound.Data, &ref); err != nil {
			return nil, nil, err
		}
		if ref.ThreadID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "thread_id is required"}, nil
		}
		return &core.Command{Kind: core.CommandLeaveThread, ThreadID: ref.ThreadID}, nil, nil

	case proto.InboundTypeDraw:
		var draw proto.DrawData
		if err := json.Unmarshal(inbound.Data, &draw); err != nil {
			return nil, nil, err
		}
		if draw.ThreadID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "thread_id is required"}, nil
		}
		return &core.Command{
			Kind: core.CommandDraw,
			Stroke: &core.Stroke{
				ThreadID: draw.ThreadID,
				FromX:    draw.FromX,
				FromY:    draw.FromY,
				ToX:      draw.ToX,
				ToY:      draw.ToY,
				Color:    draw.Color,
			},
		}, nil, nil

	case proto.InboundTypeChatMessage:
		var chat proto.ChatData
		if err := json.Unmarshal(inbound.Data, &chat); err != nil {
			return nil, nil, err
		}
		if chat.ThreadID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "thread_id is required"}, nil
		}
		return &core.Command{
			Kind:     core.CommandChatMessage,
			ThreadID: chat.ThreadID,
			Text:     chat.Text,
		}, nil, nil

	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func starPayload(star *core.Star) proto.StarPayload {
	return proto.StarPayload{
		ID:              star.ID,
		Text:            star.Text,
		Emotion:         star.Emotion,
		EmotionScore:    star.EmotionScore,
		Lat:             star.Lat,
		Lng:             star.Lng,
		ConstellationID: star.ConstellationID,
		CreatedAt:       star.CreatedAt.Unix(),
	}
}

func chatPayload(msg *core.ChatMessage) proto.EventChatMessage {
	return proto.EventChatMessage{
		ThreadID:  msg.ThreadID,
		Text:      msg.Text,
		SenderSID: msg.SenderConnID,
		TS:        msg.SentAt.Unix(),
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventActiveStars:
		ids := event.StarIDs
		if ids == nil {
			ids = []string{}
		}
		return proto.Outbound{
			Type:  "event",
			Event: "active_stars",
			Data:  proto.EventActiveStars{StarIDs: ids},
		}
	case core.EventStarOnline:
		return proto.Outbound{
			Type:  "event",
			Event: "star_online",
			Data:  proto.EventStarOnline{StarID: event.StarID},
		}
	case core.EventStarsOffline:
		return proto.Outbound{
			Type:  "event",
			Event: "stars_offline",
			Data:  proto.EventStarsOffline{StarIDs: event.StarIDs},
		}
	case core.EventThreadRequest:
		return proto.Outbound{
			Type:  "event",
			Event: "thread_request",
			Data: proto.EventThreadRequest{
				RequestID:     event.RequestID,
				RequesterStar: starPayload(event.RequesterStar),
			},
		}
	case core.EventThreadAccepted:
		return proto.Outbound{
			Type:  "event",
			Event: "thread_accepted",
			Data: proto.EventThreadAccepted{
				ThreadID:    event.ThreadID,
				Side:        string(event.Side),
				SecondsLeft: event.SecondsLeft,
			},
		}
	case core.EventThreadDeclined:
		return proto.Outbound{
			Type:  "event",
			Event: "thread_declined",
			Data:  proto.EventThreadDeclined{RequestID: event.RequestID},
		}
	case core.EventSessionPhase:
		return proto.Outbound{
			Type:  "event",
			Event: "session_phase",
			Data: proto.EventSessionPhase{
				ThreadID: event.ThreadID,
				Phase:    event.Phase.String(),
			},
		}
	case core.EventDraw:
		return proto.Outbound{
			Type:  "event",
			Event: "draw",
			Data: proto.DrawData{
				ThreadID: event.ThreadID,
				FromX:    event.Stroke.FromX,
				FromY:    event.Stroke.FromY,
				ToX:      event.Stroke.ToX,
				ToY:      event.Stroke.ToY,
				Color:    event.Stroke.Color,
			},
		}
	case core.EventChatHistory:
		messages := make([]proto.EventChatMessage, 0, len(event.Messages))
		for i := range event.Messages {
			messages = append(messages, chatPayload(&event.Messages[i]))
		}
		return proto.Outbound{
			Type:  "event",
			Event: "chat_history",
			Data: proto.EventChatHistory{
				ThreadID: event.ThreadID,
				Messages: messages,
			},
		}
	case core.EventChatMessage:
		return proto.Outbound{
			Type:  "event",
			Event: "chat_message",
			Data:  chatPayload(event.Message),
		}
	case core.EventPeerLeft:
		return proto.Outbound{
			Type:  "event",
			Event: "peer_left",
			Data:  proto.EventThreadClosed{ThreadID: event.ThreadID},
		}
	case core.EventSessionEnded:
		return proto.Outbound{
			Type:  "event",
			Event: "session_ended",
			Data:  proto.EventThreadClosed{ThreadID: event.ThreadID},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: "error", Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  "error",
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: "event"}
	}
}
