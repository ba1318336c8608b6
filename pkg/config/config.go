package config

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names for the payload review pipeline
const (
	EnvReviewNodeURL      = "REVIEW_NODE_URL"
	EnvReviewNetwork      = "REVIEW_NETWORK"
	EnvReviewStoreType    = "REVIEW_STORE_TYPE"
	EnvReviewStorePath    = "REVIEW_STORE_PATH"
	EnvReviewRedisAddress = "REVIEW_REDIS_ADDRESS"
	EnvReviewBackendURL   = "REVIEW_BACKEND_URL"
	EnvReviewAccessToken  = "REVIEW_ACCESS_TOKEN"
	EnvReviewVerbose      = "REVIEW_VERBOSE"
)

type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeBadger StoreType = "badger"
	StoreTypeRedis  StoreType = "redis"
)

func (s StoreType) String() string {
	return string(s)
}

type NetworkID uint32

const (
	NetworkID_Mainnet NetworkID = 0
	NetworkID_Testnet NetworkID = 1
	NetworkID_Devnet  NetworkID = 2
	NetworkID_Xahau   NetworkID = 21337
)

// RequiresNetworkID reports whether transactions on this network must carry
// an explicit NetworkID field. Networks with id <= 1024 are legacy networks
// where the field is forbidden.
func (n NetworkID) RequiresNetworkID() bool {
	return n > 1024
}

type NetworkType string

const (
	NetworkTypeMain NetworkType = "Mainnet"
	NetworkTypeTest NetworkType = "Testnet"
	NetworkTypeDev  NetworkType = "Devnet"
)

type NetworkName string

const (
	NetworkName_Mainnet NetworkName = "mainnet"
	NetworkName_Testnet NetworkName = "testnet"
	NetworkName_Devnet  NetworkName = "devnet"
	NetworkName_Xahau   NetworkName = "xahau"
)

// NetworkPreset bundles the connection and reserve parameters of a known
// network. BaseReserve and OwnerReserve are native-asset values, not drops.
type NetworkPreset struct {
	ID           NetworkID
	Name         NetworkName
	Type         NetworkType
	NodeURL      string
	NativeAsset  string
	BaseReserve  float64
	OwnerReserve float64
}

var networkPresets = map[NetworkName]*NetworkPreset{
	NetworkName_Mainnet: {
		ID:           NetworkID_Mainnet,
		Name:         NetworkName_Mainnet,
		Type:         NetworkTypeMain,
		NodeURL:      "wss://xrplcluster.com",
		NativeAsset:  "XRP",
		BaseReserve:  1,
		OwnerReserve: 0.2,
	},
	NetworkName_Testnet: {
		ID:           NetworkID_Testnet,
		Name:         NetworkName_Testnet,
		Type:         NetworkTypeTest,
		NodeURL:      "wss://s.altnet.rippletest.net:51233",
		NativeAsset:  "XRP",
		BaseReserve:  1,
		OwnerReserve: 0.2,
	},
	NetworkName_Devnet: {
		ID:           NetworkID_Devnet,
		Name:         NetworkName_Devnet,
		Type:         NetworkTypeDev,
		NodeURL:      "wss://s.devnet.rippletest.net:51233",
		NativeAsset:  "XRP",
		BaseReserve:  1,
		OwnerReserve: 0.2,
	},
	NetworkName_Xahau: {
		ID:           NetworkID_Xahau,
		Name:         NetworkName_Xahau,
		Type:         NetworkTypeMain,
		NodeURL:      "wss://xahau.network",
		NativeAsset:  "XAH",
		BaseReserve:  1,
		OwnerReserve: 0.2,
	},
}

// GetNetworkPreset returns the preset for a known network name.
func GetNetworkPreset(name NetworkName) (*NetworkPreset, error) {
	preset, ok := networkPresets[name]
	if !ok {
		return nil, fmt.Errorf("unsupported network: %s. Supported: %s", name, GetSupportedNetworksString())
	}
	return preset, nil
}

// GetSupportedNetworksString returns the known network names for CLI help.
func GetSupportedNetworksString() string {
	return fmt.Sprintf("%s, %s, %s, %s",
		NetworkName_Mainnet, NetworkName_Testnet, NetworkName_Devnet, NetworkName_Xahau)
}

// ReviewConfig represents the complete configuration for the payload review
// pipeline.
type ReviewConfig struct {
	// Node connection
	NodeURL string      `json:"node_url"`
	Network NetworkName `json:"network"`

	// Account store
	StoreType    StoreType `json:"store_type"`
	StorePath    string    `json:"store_path,omitempty"`
	RedisAddress string    `json:"redis_address,omitempty"`

	// Payload origin backend
	BackendURL  string `json:"backend_url,omitempty"`
	AccessToken string `json:"access_token,omitempty"`

	// Operational settings
	Debug   bool `json:"debug"`
	Verbose bool `json:"verbose"`

	// Populated from the network preset during Validate
	Preset *NetworkPreset `json:"preset,omitempty"`
}

// Validate validates the review configuration and fills defaults from the
// network preset.
func (c *ReviewConfig) Validate() error {
	var allErrors field.ErrorList

	if c.Network == "" {
		c.Network = NetworkName_Mainnet
	}
	preset, err := GetNetworkPreset(c.Network)
	if err != nil {
		allErrors = append(allErrors, field.NotSupported(field.NewPath("network"), c.Network,
			[]string{string(NetworkName_Mainnet), string(NetworkName_Testnet), string(NetworkName_Devnet), string(NetworkName_Xahau)}))
	} else {
		c.Preset = preset
		if c.NodeURL == "" {
			c.NodeURL = preset.NodeURL
		}
	}

	if c.NodeURL != "" && !strings.HasPrefix(c.NodeURL, "ws://") && !strings.HasPrefix(c.NodeURL, "wss://") {
		allErrors = append(allErrors, field.Invalid(field.NewPath("nodeUrl"), c.NodeURL, "must be a ws:// or wss:// endpoint"))
	}

	switch c.StoreType {
	case "":
		c.StoreType = StoreTypeMemory
	case StoreTypeMemory:
	case StoreTypeBadger:
		if c.StorePath == "" {
			allErrors = append(allErrors, field.Required(field.NewPath("storePath"), "storePath is required for the badger store"))
		}
	case StoreTypeRedis:
		if c.RedisAddress == "" {
			allErrors = append(allErrors, field.Required(field.NewPath("redisAddress"), "redisAddress is required for the redis store"))
		}
	default:
		allErrors = append(allErrors, field.NotSupported(field.NewPath("storeType"), c.StoreType,
			[]string{string(StoreTypeMemory), string(StoreTypeBadger), string(StoreTypeRedis)}))
	}

	if c.BackendURL != "" && c.AccessToken == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("accessToken"), "accessToken is required when a backend URL is set"))
	}

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}
