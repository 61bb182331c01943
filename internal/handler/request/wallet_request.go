package request

// AddressQuery 地址扫描参数, security 为 0 时使用默认安全等级
type AddressQuery struct {
	Start    int `form:"start"`
	Security int `form:"security"`
}

// TransfersQuery stop 为 0 表示扫描到第一个未使用地址为止
type TransfersQuery struct {
	Start           int  `form:"start"`
	Stop            int  `form:"stop" binding:"min=0"`
	Security        int  `form:"security"`
	InclusionStates bool `form:"inclusion_states"`
}

// ResolveBundlesRequest 按交易哈希解析 bundle
type ResolveBundlesRequest struct {
	Hashes          []string `json:"hashes" binding:"required,min=1,max=1000,dive,tryte_hash"`
	InclusionStates bool     `json:"inclusion_states"`
}

// SyncQuery 同步参数
type SyncQuery struct {
	Security int `form:"security"`
}
