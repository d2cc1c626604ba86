package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/kode4food/caravan/message"

	"github.com/kode4food/wfm/pkg/api"
	"github.com/kode4food/wfm/pkg/client"
	"github.com/kode4food/wfm/pkg/log"
)

// publishStatus derives the status of the workorder a result belongs to and
// announces it to WebSocket subscribers. The changed result is reviewed in
// place of whatever the mediator would list first
func (s *Server) publishStatus(ctx context.Context, res *api.Result) {
	if res == nil || res.WorkorderID == "" {
		return
	}
	ev, err := s.statusEvent(ctx, res.WorkorderID, res)
	if err != nil {
		slog.Warn("Status not published",
			log.WorkorderID(res.WorkorderID),
			log.ResultID(res.ID),
			log.Error(err))
		return
	}
	message.Send(s.producer, ev)
}

func (s *Server) statusEvent(
	ctx context.Context, id api.WorkorderID, res *api.Result,
) (*api.StatusEvent, error) {
	sum, err := s.client.GetWorkorderSummary(ctx, id)
	if err != nil {
		return nil, err
	}
	if res != nil {
		sum.Result = res
	}
	st := client.StatusOf(sum)

	ev := &api.StatusEvent{
		WorkorderID: id,
		Status:      st.Status,
		Review:      *st.Review,
		Timestamp:   time.Now().UnixMilli(),
	}
	if sum.Result != nil {
		ev.ResultID = sum.Result.ID
	}
	return ev, nil
}
