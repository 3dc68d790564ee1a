package util

import (
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node     *snowflake.Node
	nodeOnce sync.Once
	nodeMu   sync.Mutex
)

// InitSnowflake 初始化雪花算法节点（进程启动时调用一次）
func InitSnowflake(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}
	nodeMu.Lock()
	node = n
	nodeMu.Unlock()
	return nil
}

// GenID 生成雪花 ID，未初始化时使用 1 号节点
func GenID() int64 {
	nodeMu.Lock()
	n := node
	nodeMu.Unlock()
	if n == nil {
		nodeOnce.Do(func() {
			_ = InitSnowflake(1)
		})
		nodeMu.Lock()
		n = node
		nodeMu.Unlock()
	}
	return n.Generate().Int64()
}

// GenIDString 生成字符串形式的雪花 ID
func GenIDString() string {
	return strconv.FormatInt(GenID(), 10)
}
