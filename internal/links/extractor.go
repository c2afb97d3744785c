package links

import (
	"iter"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/RecoveryAshes/linkaudit/internal/models"
)

// Anchor 从HTML中提取的一个<a>元素
type Anchor struct {
	Text string
	Href string
}

// ParseAnchors 提取HTML片段中所有带href属性的<a>元素
// 解析是尽力而为的: 解析失败时返回空列表,不返回错误
func ParseAnchors(markup string) []Anchor {
	if strings.TrimSpace(markup) == "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		log.Debug().Err(err).Msg("解析HTML片段失败,按无链接处理")
		return nil
	}

	var anchors []Anchor
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		anchors = append(anchors, Anchor{
			Text: strings.TrimSpace(s.Text()),
			Href: href,
		})
	})
	return anchors
}

// ParseLink 将href解析为可检测的绝对URL
// 协议或主机为空的链接(相对路径、mailto:、javascript:等)返回false
func ParseLink(href string) (*url.URL, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return nil, false
	}

	u, err := url.Parse(href)
	if err != nil {
		return nil, false
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, false
	}
	return u, true
}

// ExtractJobs 从一行数据中提取Job序列
// 每个可用链接产生一个Job,Ordinal为其在本行可用链接中的顺序
func ExtractJobs(row int, location, markup string) iter.Seq[models.Job] {
	return func(yield func(models.Job) bool) {
		ordinal := 0
		for _, anchor := range ParseAnchors(markup) {
			u, ok := ParseLink(anchor.Href)
			if !ok {
				log.Debug().Int("row", row).Str("href", anchor.Href).Msg("跳过不可检测的链接")
				continue
			}

			job := models.Job{
				Row:      row,
				Ordinal:  ordinal,
				Location: location,
				URL:      u,
			}
			ordinal++

			if !yield(job) {
				return
			}
		}
	}
}

// ExtractRows 按行顺序提取所有行的Job
func ExtractRows(rows []models.Row) iter.Seq[models.Job] {
	return func(yield func(models.Job) bool) {
		for _, row := range rows {
			for job := range ExtractJobs(row.Index, row.Location, row.Markup) {
				if !yield(job) {
					return
				}
			}
		}
	}
}
