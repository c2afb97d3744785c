// Package links 从HTML片段中提取待检测链接,并按源站分组
//
// # 概述
//
// 输入表格的每一行包含一个位置标签和一段HTML。ExtractJobs 对单行做尽力解析,
// 每个带有可用href的<a>元素产生一个 models.Job。可用的href必须解析出非空的
// 协议和主机;相对链接、mailto:、javascript: 等无法单独检测,直接跳过。
//
// BuildIndex 将全部Job按源站(OriginKey)分组。同一源站内保持发现顺序,
// 源站本身按首次出现的顺序排列,保证调度顺序可复现。
//
//	index := links.BuildIndex(links.ExtractRows(rows))
//	for _, origin := range index.Origins() {
//	    jobs := index.Jobs(origin)
//	    // ...
//	}
package links
