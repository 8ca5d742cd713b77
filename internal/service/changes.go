package service

import (
	"sort"
	"strings"
)

// 变更实体类型
const (
	EntityWorkOrder     = "work_order"
	EntityAssignment    = "assignment"
	EntityEmployee      = "employee"
	EntityCertification = "certification"
	EntityEstimate      = "estimate"
)

// EntityRef 被修改的实体
type EntityRef struct {
	Type string
	ID   string
}

func (r EntityRef) String() string {
	return r.Type + ":" + r.ID
}

// ChangeSet 一次写操作涉及的实体集合，供 HTTP 层失效缓存、回写响应头
type ChangeSet []EntityRef

// Add 追加实体（去重）
func (c ChangeSet) Add(typ, id string) ChangeSet {
	for _, r := range c {
		if r.Type == typ && r.ID == id {
			return c
		}
	}
	return append(c, EntityRef{Type: typ, ID: id})
}

// IDs 某一类型的实体 ID
func (c ChangeSet) IDs(typ string) []string {
	var out []string
	for _, r := range c {
		if r.Type == typ {
			out = append(out, r.ID)
		}
	}
	return out
}

// Header 形如 "assignment:a1,work_order:w1"（有序）
func (c ChangeSet) Header() string {
	parts := make([]string, 0, len(c))
	for _, r := range c {
		parts = append(parts, r.String())
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
