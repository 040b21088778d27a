package source

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dgmtsproject/dgmts-sub001/pkg/core/domain"
	"github.com/dgmtsproject/dgmts-sub001/pkg/core/ports"
)

// Router 按仪器 ID 把请求路由到对应的读数源
type Router struct {
	routes map[string]route
}

type route struct {
	info   domain.InstrumentInfo
	source ports.ReadingSource
}

var (
	_ ports.ReadingSource     = (*Router)(nil)
	_ ports.InstrumentCatalog = (*Router)(nil)
)

// NewRouter 创建空路由
func NewRouter() *Router {
	return &Router{routes: make(map[string]route)}
}

// Register 登记仪器；重复 ID 返回错误
func (r *Router) Register(info domain.InstrumentInfo, src ports.ReadingSource) error {
	if info.ID == "" {
		return fmt.Errorf("%w: instrument id is required", domain.ErrInvalidArgument)
	}
	if _, ok := r.routes[info.ID]; ok {
		return fmt.Errorf("%w: duplicate instrument %s", domain.ErrInvalidArgument, info.ID)
	}
	r.routes[info.ID] = route{info: info, source: src}
	return nil
}

// Fetch 实现 ports.ReadingSource
func (r *Router) Fetch(ctx context.Context, instrumentID string, from, to time.Time) ([]domain.Reading, error) {
	rt, ok := r.routes[instrumentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrInstrumentNotFound, instrumentID)
	}
	return rt.source.Fetch(ctx, instrumentID, from, to)
}

// Instruments 实现 ports.InstrumentCatalog，按 ID 排序
func (r *Router) Instruments() []domain.InstrumentInfo {
	out := make([]domain.InstrumentInfo, 0, len(r.routes))
	for _, rt := range r.routes {
		out = append(out, rt.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
