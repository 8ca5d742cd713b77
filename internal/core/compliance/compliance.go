// Package compliance 员工资质合规快照计算。
// 纯函数：输入资质列表与当前时间，输出快照；不读写数据库。
package compliance

import (
	"sort"
	"time"
)

// Status 资质 / 员工合规状态
type Status string

const (
	StatusPass       Status = "PASS"
	StatusFail       Status = "FAIL"
	StatusIncomplete Status = "INCOMPLETE"
	StatusExpired    Status = "EXPIRED"
)

// DefaultWarningWindow 到期预警窗口默认值
const DefaultWarningWindow = 30 * 24 * time.Hour

// Valid 是否为资质记录可保存的状态
func (s Status) Valid() bool {
	switch s {
	case StatusPass, StatusFail, StatusIncomplete, StatusExpired:
		return true
	}
	return false
}

// Certification 参与计算的资质输入
type Certification struct {
	ID        string
	Name      string
	Required  bool
	Status    Status
	ExpiresAt *time.Time
}

// Gap 缺失或即将到期的资质条目
type Gap struct {
	CertificationID string     `json:"certification_id"`
	Name            string     `json:"name"`
	Status          Status     `json:"status"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

// GapSummary 随派工记录一并保存的缺口摘要
type GapSummary struct {
	Missing  []Gap `json:"missing"`
	Expiring []Gap `json:"expiring"`
}

// Snapshot 某一时刻的合规快照
type Snapshot struct {
	Status        Status    `json:"status"`
	Missing       []Gap     `json:"missing"`
	Expiring      []Gap     `json:"expiring"`
	NeedsOverride bool      `json:"needs_override"`
	EvaluatedAt   time.Time `json:"evaluated_at"`
}

// Summary 提取缺口摘要
func (s Snapshot) Summary() GapSummary {
	return GapSummary{Missing: s.Missing, Expiring: s.Expiring}
}

// EffectiveStatus 结合有效期得出资质当前状态：
// 已过期（expires_at <= now）的 PASS / INCOMPLETE 视为 EXPIRED
func EffectiveStatus(c Certification, now time.Time) Status {
	if c.ExpiresAt != nil && !c.ExpiresAt.After(now) {
		if c.Status == StatusPass || c.Status == StatusIncomplete {
			return StatusExpired
		}
	}
	return c.Status
}

// Evaluate 计算合规快照
//
//   - missing:  required 且有效状态 != PASS
//   - expiring: 有效状态 == PASS 且 expires_at 落在 (now, now+window]
//   - 员工状态: 有 FAIL/EXPIRED 缺口 → FAIL；缺口全为 INCOMPLETE → INCOMPLETE；无缺口 → PASS
func Evaluate(certs []Certification, now time.Time, window time.Duration) Snapshot {
	snap := Snapshot{
		Status:      StatusPass,
		Missing:     []Gap{},
		Expiring:    []Gap{},
		EvaluatedAt: now,
	}
	horizon := now.Add(window)

	hardFail := false
	for _, c := range certs {
		eff := EffectiveStatus(c, now)
		gap := Gap{CertificationID: c.ID, Name: c.Name, Status: eff, ExpiresAt: c.ExpiresAt}

		if c.Required && eff != StatusPass {
			snap.Missing = append(snap.Missing, gap)
			if eff != StatusIncomplete {
				hardFail = true
			}
			continue
		}
		if eff == StatusPass && c.ExpiresAt != nil && !c.ExpiresAt.After(horizon) {
			snap.Expiring = append(snap.Expiring, gap)
		}
	}

	sortGaps(snap.Missing)
	sortGaps(snap.Expiring)

	switch {
	case hardFail:
		snap.Status = StatusFail
	case len(snap.Missing) > 0:
		snap.Status = StatusIncomplete
	}
	snap.NeedsOverride = len(snap.Missing) > 0
	return snap
}

// StatusAfterProof 上传证明后资质应处于的状态：审核通过 → PASS，否则待审核 → INCOMPLETE
func StatusAfterProof(current Status, accepted bool) Status {
	if accepted {
		return StatusPass
	}
	if current == StatusPass {
		return StatusPass
	}
	return StatusIncomplete
}

// InitialStatus 新建资质记录的默认状态（未上传证明或待审核）
func InitialStatus() Status {
	return StatusIncomplete
}

func sortGaps(gaps []Gap) {
	sort.SliceStable(gaps, func(i, j int) bool {
		if gaps[i].Name != gaps[j].Name {
			return gaps[i].Name < gaps[j].Name
		}
		return gaps[i].CertificationID < gaps[j].CertificationID
	})
}
