package auth

import (
	"hash/fnv"
	"sort"
	"strconv"
	"sync"
)

// HashRing 一致性哈希环，用于把 token 缓存分摊到多个鉴权节点
type HashRing struct {
	mu       sync.RWMutex
	replicas int
	keys     []uint32 // 已排序的虚拟节点哈希
	nodes    map[uint32]string
	members  map[string]struct{}
}

// NewHashRing 创建哈希环；nodes 为空时补一个默认节点避免取不到
func NewHashRing(nodes []string, replicas int) *HashRing {
	if replicas <= 0 {
		replicas = 50
	}
	if len(nodes) == 0 {
		nodes = []string{"auth-node-default"}
	}
	r := &HashRing{
		replicas: replicas,
		nodes:    make(map[uint32]string),
		members:  make(map[string]struct{}),
	}
	r.Add(nodes...)
	return r
}

func hashKey(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

// Add 批量添加节点
func (r *HashRing) Add(nodes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, node := range nodes {
		if _, ok := r.members[node]; ok {
			continue
		}
		r.members[node] = struct{}{}
		for i := 0; i < r.replicas; i++ {
			h := hashKey(node + "#" + strconv.Itoa(i))
			r.keys = append(r.keys, h)
			r.nodes[h] = node
		}
	}
	sort.Slice(r.keys, func(i, j int) bool { return r.keys[i] < r.keys[j] })
}

// GetNode 取 key 顺时针方向的第一个节点
func (r *HashRing) GetNode(key string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.keys) == 0 {
		return ""
	}
	h := hashKey(key)
	idx := sort.Search(len(r.keys), func(i int) bool { return r.keys[i] >= h })
	if idx == len(r.keys) {
		idx = 0
	}
	return r.nodes[r.keys[idx]]
}
