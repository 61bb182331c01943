package node

import (
	"fmt"

	"tangle-wallet/pkg/tangle"
)

// 节点 JSON API 的命令名
const (
	cmdFindTransactions       = "findTransactions"
	cmdWereAddressesSpentFrom = "wereAddressesSpentFrom"
	cmdGetTrytes              = "getTrytes"
	cmdGetInclusionStates     = "getInclusionStates"
	cmdGetNodeInfo            = "getNodeInfo"
	cmdGetBalances            = "getBalances"
)

// balanceThreshold getBalances 的确认阈值, 节点只接受 100
const balanceThreshold = 100

type findTransactionsRequest struct {
	Command   string        `json:"command"`
	Addresses []tangle.Hash `json:"addresses,omitempty"`
	Bundles   []tangle.Hash `json:"bundles,omitempty"`
}

type findTransactionsResponse struct {
	Hashes []tangle.Hash `json:"hashes"`
}

type addressesRequest struct {
	Command   string        `json:"command"`
	Addresses []tangle.Hash `json:"addresses"`
}

type wereAddressesSpentFromResponse struct {
	States []bool `json:"states"`
}

type getTrytesRequest struct {
	Command string        `json:"command"`
	Hashes  []tangle.Hash `json:"hashes"`
}

type getTrytesResponse struct {
	Trytes []string `json:"trytes"`
}

type getInclusionStatesRequest struct {
	Command      string        `json:"command"`
	Transactions []tangle.Hash `json:"transactions"`
	Tips         []tangle.Hash `json:"tips"`
}

type getInclusionStatesResponse struct {
	States []bool `json:"states"`
}

type commandRequest struct {
	Command string `json:"command"`
}

// NodeInfo getNodeInfo 的返回, 只保留用到的字段
type NodeInfo struct {
	AppName                            string      `json:"appName"`
	AppVersion                         string      `json:"appVersion"`
	LatestMilestone                    tangle.Hash `json:"latestMilestone"`
	LatestMilestoneIndex               int64       `json:"latestMilestoneIndex"`
	LatestSolidSubtangleMilestone      tangle.Hash `json:"latestSolidSubtangleMilestone"`
	LatestSolidSubtangleMilestoneIndex int64       `json:"latestSolidSubtangleMilestoneIndex"`
}

type getBalancesRequest struct {
	Command   string        `json:"command"`
	Addresses []tangle.Hash `json:"addresses"`
	Threshold int           `json:"threshold"`
}

type getBalancesResponse struct {
	Balances       []string `json:"balances"`
	MilestoneIndex int64    `json:"milestoneIndex"`
}

// APIError 节点返回的错误体
// 参数错误放在 error 字段, 节点内部异常放在 exception 字段
type APIError struct {
	StatusCode int    `json:"-"`
	Command    string `json:"-"`
	Message    string `json:"error"`
	Exception  string `json:"exception"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Exception
	}
	return fmt.Sprintf("node %s failed with status %d: %s", e.Command, e.StatusCode, msg)
}
