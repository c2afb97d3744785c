package links

import (
	"net/url"
	"slices"
	"testing"

	"github.com/RecoveryAshes/linkaudit/internal/models"
)

func newJob(t *testing.T, row, ordinal int, raw string) models.Job {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("解析URL失败: %v", err)
	}
	return models.Job{Row: row, Ordinal: ordinal, Location: "loc", URL: u}
}

func TestBuildIndex(t *testing.T) {
	jobs := []models.Job{
		newJob(t, 0, 0, "http://a.test/1"),
		newJob(t, 0, 1, "https://b.test/1"),
		newJob(t, 1, 0, "HTTP://A.test/2"),
		newJob(t, 2, 0, "http://c.test/1"),
		newJob(t, 2, 1, "http://a.test/3"),
	}

	index := BuildIndex(slices.Values(jobs))

	t.Run("Job总数", func(t *testing.T) {
		if index.Len() != len(jobs) {
			t.Errorf("期望 %d, 得到 %d", len(jobs), index.Len())
		}
	})

	t.Run("源站按首次出现顺序", func(t *testing.T) {
		expected := []string{"http://a.test", "https://b.test", "http://c.test"}
		if got := index.Origins(); !slices.Equal(got, expected) {
			t.Errorf("期望 %v, 得到 %v", expected, got)
		}
		if index.OriginCount() != 3 {
			t.Errorf("期望3个源站, 得到%d个", index.OriginCount())
		}
	})

	t.Run("大小写不同的主机属于同一分组且保持发现顺序", func(t *testing.T) {
		bucket := index.Jobs("http://a.test")
		var urls []string
		for _, job := range bucket {
			urls = append(urls, job.RawURL())
		}
		// url.Parse只把协议转为小写
		expected := []string{"http://a.test/1", "http://A.test/2", "http://a.test/3"}
		if !slices.Equal(urls, expected) {
			t.Errorf("期望 %v, 得到 %v", expected, urls)
		}
	})

	t.Run("分组构成划分", func(t *testing.T) {
		total := 0
		seen := make(map[string]bool)
		for origin, bucket := range index.All() {
			if seen[origin] {
				t.Errorf("源站重复: %s", origin)
			}
			seen[origin] = true
			for _, job := range bucket {
				if OriginKey(job.URL) != origin {
					t.Errorf("Job %s 不属于分组 %s", job.RawURL(), origin)
				}
			}
			total += len(bucket)
		}
		if total != len(jobs) {
			t.Errorf("分组Job总数 %d != %d", total, len(jobs))
		}
	})

	t.Run("Origins返回副本", func(t *testing.T) {
		origins := index.Origins()
		origins[0] = "mutated"
		if index.Origins()[0] == "mutated" {
			t.Error("修改返回值不应影响索引")
		}
	})
}

func TestBuildIndex_Empty(t *testing.T) {
	index := BuildIndex(slices.Values([]models.Job(nil)))
	if index.Len() != 0 || index.OriginCount() != 0 {
		t.Errorf("空索引: Len=%d OriginCount=%d", index.Len(), index.OriginCount())
	}
	if index.Jobs("http://a.test") != nil {
		t.Error("不存在的源站应返回nil")
	}
}
