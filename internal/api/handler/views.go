package handler

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/service"
)

// ChangedEntitiesHeader 写操作成功后回写被修改的实体，前端据此刷新
const ChangedEntitiesHeader = "X-Changed-Entities"

// viewStore 工单详情视图缓存：键按公司隔离，写操作按 ChangeSet 失效
type viewStore struct {
	cache ViewCache
	ttl   time.Duration
}

func newViewStore(cache ViewCache, ttl time.Duration) *viewStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &viewStore{cache: cache, ttl: ttl}
}

func workOrderViewKey(companyID, id string) string {
	return "work_order:" + companyID + ":" + id
}

// load 命中时把缓存写入 dst；缓存异常按未命中处理
func (v *viewStore) load(c *gin.Context, key string, dst interface{}) bool {
	if v == nil || v.cache == nil {
		return false
	}
	b, ok, err := v.cache.GetView(c.Request.Context(), key)
	if err != nil || !ok {
		return false
	}
	return json.Unmarshal(b, dst) == nil
}

func (v *viewStore) store(c *gin.Context, key string, value interface{}) {
	if v == nil || v.cache == nil {
		return
	}
	b, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = v.cache.SetView(c.Request.Context(), key, b, v.ttl)
}

// commit 回写变更头并失效受影响的工单视图
func (v *viewStore) commit(c *gin.Context, companyID string, changes service.ChangeSet) {
	if len(changes) == 0 {
		return
	}
	c.Header(ChangedEntitiesHeader, changes.Header())

	if v == nil || v.cache == nil {
		return
	}
	ids := changes.IDs(service.EntityWorkOrder)
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = workOrderViewKey(companyID, id)
	}
	if err := v.cache.DeleteViews(c.Request.Context(), keys...); err != nil {
		_ = c.Error(err)
	}
}
