package core

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/RecoveryAshes/linkaudit/internal/models"
	"github.com/RecoveryAshes/linkaudit/internal/utils"
)

// DefaultOriginMemoryUsage 单个源站worker的估算内存占用(collector + transport + 缓冲区)
const DefaultOriginMemoryUsage = 2 * 1024 * 1024

// ResourceMonitor 运行前的系统资源检查
// 每个源站一个goroutine和一个独立连接池,源站数量过多时给出警告
type ResourceMonitor struct {
	// 单个源站估算内存(字节)
	OriginMemoryUsage uint64

	// 可用内存中允许用于worker的比例
	SafetyRatio float64

	// 测试时替换
	virtualMemory func() (*mem.VirtualMemoryStat, error)
	cpuCounts     func(logical bool) (int, error)
}

// NewResourceMonitor 创建资源监控器
func NewResourceMonitor() *ResourceMonitor {
	return &ResourceMonitor{
		OriginMemoryUsage: DefaultOriginMemoryUsage,
		SafetyRatio:       0.5,
		virtualMemory:     mem.VirtualMemory,
		cpuCounts:         cpu.Counts,
	}
}

// Snapshot 采集当前内存与CPU信息,获取失败的字段保持为零值
func (rm *ResourceMonitor) Snapshot() *models.ResourceSnapshot {
	snapshot := &models.ResourceSnapshot{}

	if vmStat, err := rm.virtualMemory(); err != nil {
		utils.Logger.Warn().Err(err).Msg("获取系统内存失败")
	} else {
		snapshot.TotalMemory = vmStat.Total
		snapshot.AvailableMemory = vmStat.Available
	}

	if count, err := rm.cpuCounts(true); err != nil || count <= 0 {
		snapshot.LogicalCPUs = runtime.NumCPU()
	} else {
		snapshot.LogicalCPUs = count
	}

	return snapshot
}

// CheckFanOut 判断源站数量对应的并发规模是否在可用内存的安全范围内
// 返回false时附带原因;可用内存未知时总是返回true
func (rm *ResourceMonitor) CheckFanOut(snapshot *models.ResourceSnapshot, origins int) (ok bool, reason string) {
	if snapshot == nil || snapshot.AvailableMemory == 0 || origins <= 0 {
		return true, ""
	}

	required := uint64(origins) * rm.OriginMemoryUsage
	budget := uint64(float64(snapshot.AvailableMemory) * rm.SafetyRatio)
	if required <= budget {
		return true, ""
	}

	return false, fmt.Sprintf("%d个源站预计占用%.1f MB内存,超过可用内存的安全范围(%.1f MB)",
		origins, toMB(required), toMB(budget))
}

// Report 记录资源快照并在并发规模过大时警告
func (rm *ResourceMonitor) Report(snapshot *models.ResourceSnapshot, origins int) {
	utils.Logger.Debug().
		Float64("total_mb", toMB(snapshot.TotalMemory)).
		Float64("available_mb", toMB(snapshot.AvailableMemory)).
		Int("logical_cpus", snapshot.LogicalCPUs).
		Int("origins", origins).
		Msg("系统资源")

	if ok, reason := rm.CheckFanOut(snapshot, origins); !ok {
		utils.Warnf("⚠️  %s", reason)
	}
}

func toMB(bytes uint64) float64 {
	return float64(bytes) / (1024 * 1024)
}
