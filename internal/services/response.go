package services

import "bus-schedule-bot/internal/action"

// A selectable follow-up attached to a response.
type Button struct {
	Label  string
	Action action.Action
}

// Response is the transport-neutral outbound message.
type Response struct {
	Text    string
	Actions []Button
}

func textResponse(text string) Response { return Response{Text: text} }
