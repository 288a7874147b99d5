package controlplane

import (
	"strings"
	"time"

	"github.com/Toyota-Connected-India/red-monkey-go/internal/faultstore"
)

// faultPlanDTO is the canonical on-wire JSON shape for a FaultPlan.
// fault_type is accepted case-insensitively and always rendered in
// canonical casing.
type faultPlanDTO struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	FaultType    string  `json:"fault_type"`
	DurationMs   *uint64 `json:"duration,omitempty"`
	ErrorMsg     string  `json:"error_msg,omitempty"`
	Command      string  `json:"command"`
	LastModified *string `json:"last_modified,omitempty"`
}

func toDTO(p faultstore.FaultPlan) faultPlanDTO {
	dto := faultPlanDTO{
		Name:        p.Name,
		Description: p.Description,
		FaultType:   string(p.FaultType),
		ErrorMsg:    p.ErrorMsg,
		Command:     p.Command,
	}
	if p.FaultType == faultstore.Delay {
		d := p.DurationMs
		dto.DurationMs = &d
	}
	if !p.LastModified.IsZero() {
		s := p.LastModified.UTC().Format(time.RFC3339Nano)
		dto.LastModified = &s
	}
	return dto
}

// toPlan converts an inbound DTO to a FaultPlan. It normalizes fault_type
// casing; all other Invalid-criteria checks are left to the registry's
// Create, which is the single source of truth for validation.
func (dto faultPlanDTO) toPlan() faultstore.FaultPlan {
	p := faultstore.FaultPlan{
		Name:        dto.Name,
		Description: dto.Description,
		FaultType:   normalizeFaultType(dto.FaultType),
		ErrorMsg:    dto.ErrorMsg,
		Command:     dto.Command,
	}
	if dto.DurationMs != nil {
		p.DurationMs = *dto.DurationMs
	}
	return p
}

func normalizeFaultType(s string) faultstore.FaultType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "delay":
		return faultstore.Delay
	case "error":
		return faultstore.Error
	case "dropconn":
		return faultstore.DropConn
	default:
		// left as-is so the registry's validate() rejects it as Invalid
		// rather than silently coercing an unknown type.
		return faultstore.FaultType(s)
	}
}

// statsDTO mirrors faultstore.Stats for the GET /stats response.
type statsDTO struct {
	TotalRequests     int64   `json:"total_requests"`
	DelayedRequests   int64   `json:"delayed_requests"`
	ErroredRequests   int64   `json:"errored_requests"`
	DroppedRequests   int64   `json:"dropped_requests"`
	LastInjectionTime *string `json:"last_injection_time,omitempty"`
}

func toStatsDTO(s faultstore.Stats) statsDTO {
	dto := statsDTO{
		TotalRequests:   s.TotalRequests,
		DelayedRequests: s.DelayedRequests,
		ErroredRequests: s.ErroredRequests,
		DroppedRequests: s.DroppedRequests,
	}
	if !s.LastInjectionTime.IsZero() {
		t := s.LastInjectionTime.UTC().Format(time.RFC3339Nano)
		dto.LastInjectionTime = &t
	}
	return dto
}
