package links

import (
	"iter"

	"github.com/RecoveryAshes/linkaudit/internal/models"
)

// JobIndex 按源站分组的Job集合
// 每个Job只属于一个分组,分组内保持发现顺序
type JobIndex struct {
	// 源站 -> 该源站的Job(发现顺序)
	buckets map[string][]models.Job

	// 源站首次出现的顺序
	order []string

	// Job总数
	total int
}

// NewJobIndex 创建空索引
func NewJobIndex() *JobIndex {
	return &JobIndex{
		buckets: make(map[string][]models.Job),
	}
}

// BuildIndex 从Job序列构建索引
func BuildIndex(jobs iter.Seq[models.Job]) *JobIndex {
	index := NewJobIndex()
	for job := range jobs {
		index.Add(job)
	}
	return index
}

// Add 将Job加入其源站分组,返回源站键
func (ix *JobIndex) Add(job models.Job) string {
	origin := OriginKey(job.URL)
	if _, exists := ix.buckets[origin]; !exists {
		ix.order = append(ix.order, origin)
	}
	ix.buckets[origin] = append(ix.buckets[origin], job)
	ix.total++
	return origin
}

// Origins 返回所有源站(首次出现顺序)
func (ix *JobIndex) Origins() []string {
	origins := make([]string, len(ix.order))
	copy(origins, ix.order)
	return origins
}

// Jobs 返回某源站的Job
func (ix *JobIndex) Jobs(origin string) []models.Job {
	return ix.buckets[origin]
}

// All 按源站首次出现顺序遍历所有分组
func (ix *JobIndex) All() iter.Seq2[string, []models.Job] {
	return func(yield func(string, []models.Job) bool) {
		for _, origin := range ix.order {
			if !yield(origin, ix.buckets[origin]) {
				return
			}
		}
	}
}

// Len 返回Job总数
func (ix *JobIndex) Len() int {
	return ix.total
}

// OriginCount 返回源站数量
func (ix *JobIndex) OriginCount() int {
	return len(ix.order)
}
