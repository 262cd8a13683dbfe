package kcompat

// The catalog is configuration, not logic: each entry is one line of
// the query grammar and yields exactly one macro name. New kernel
// versions mean new table rows here, never new control flow in the
// engine. Group order and entry order are fixed so output is
// reproducible byte for byte.

// Entry is one feature check. When Region is set, `-` candidates in
// the query resolve to that region's extracted text.
type Entry struct {
	Query  string
	Region string
}

// Region is a struct span extracted once per group and re-queried by
// multiple entries, avoiding repeat scans of a large header.
type Region struct {
	Name   string
	Struct string
	Files  []string
}

// Group is an ordered set of entries for one kernel subsystem,
// optionally gated on a build-config flag (without the CONFIG_ prefix).
type Group struct {
	Name    string
	Gate    string
	Regions []Region
	Entries []Entry
}

// Catalog returns the feature checks in evaluation order.
func Catalog() []Group {
	return []Group{
		{
			Name: "netdev",
			Entries: []Entry{
				{Query: "HAVE_NDO_ETH_IOCTL if method ndo_eth_ioctl of net_device_ops in include/linux/netdevice.h"},
				{Query: "HAVE_NDO_FEATURES_CHECK if method ndo_features_check of net_device_ops in include/linux/netdevice.h"},
				{Query: "HAVE_NDO_FDB_DEL_EXTACK if method ndo_fdb_del of net_device_ops matches 'extack' in include/linux/netdevice.h"},
				{Query: "HAVE_NETDEV_MIN_MAX_MTU if struct net_device matches 'min_mtu' in include/linux/netdevice.h"},
				{Query: "NEED_ETH_HW_ADDR_SET if fun eth_hw_addr_set absent in include/linux/etherdevice.h"},
				{Query: "NEED_NETIF_NAPI_ADD_WEIGHT if fun netif_napi_add_weight absent in include/linux/netdevice.h"},
				{Query: "HAVE_ETH_GET_HEADLEN_NET_DEVICE_ARG if fun eth_get_headlen matches 'struct net_device' in include/linux/etherdevice.h"},
				// data_meta moved from filter.h to its own header.
				{Query: "HAVE_XDP_BUFF_DATA_META if struct xdp_buff matches 'data_meta' in include/net/xdp.h include/linux/filter.h"},
			},
		},
		{
			Name: "ethtool",
			Entries: []Entry{
				{Query: "HAVE_ETHTOOL_LINK_KSETTINGS if struct ethtool_link_ksettings in include/linux/ethtool.h"},
				{Query: "HAVE_ETHTOOL_KEEE if struct ethtool_keee in include/linux/ethtool.h"},
				{Query: "HAVE_ETHTOOL_COALESCE_EXTACK if method get_coalesce of ethtool_ops matches 'kernel_ethtool_coalesce' in include/linux/ethtool.h"},
				{Query: "HAVE_ETHTOOL_RXFH_PARAM if struct ethtool_rxfh_param in include/linux/ethtool.h"},
			},
		},
		{
			Name: "devlink",
			Gate: "NET_DEVLINK",
			Regions: []Region{
				{Name: "devlink_ops", Struct: "devlink_ops", Files: []string{"include/net/devlink.h"}},
			},
			Entries: []Entry{
				{Query: "HAVE_DEVLINK_FLASH_UPDATE_PARAMS if struct devlink_flash_update_params in include/net/devlink.h"},
				{Query: "HAVE_DEVLINK_FLASH_UPDATE_PARAMS_FW if struct devlink_flash_update_params matches 'struct firmware \\*fw' in include/net/devlink.h"},
				{Query: "HAVE_DEVLINK_HEALTH if fun devlink_health_report in include/net/devlink.h"},
				{Query: "HAVE_DEVLINK_HEALTH_DEFAULT_AUTO_RECOVER if fun devlink_health_reporter_create lacks 'auto_recover' in include/net/devlink.h"},
				{Query: "HAVE_DEVLINK_PARAMS_PUBLISH if fun devlink_params_publish in include/net/devlink.h"},
				{Query: "HAVE_DEVLINK_OPS_SUPPORTED_FLASH_UPDATE_PARAMS if struct devlink_ops matches 'supported_flash_update_params' in -", Region: "devlink_ops"},
				{Query: "HAVE_DEVLINK_OPS_RELOAD_ACTIONS if struct devlink_ops matches 'reload_actions' in -", Region: "devlink_ops"},
				{Query: "HAVE_DEVLINK_OPS_PORT_SPLIT if struct devlink_ops matches 'port_split' in -", Region: "devlink_ops"},
				{Query: "HAVE_DEVLINK_SET_FEATURES if fun devlink_set_features in include/net/devlink.h"},
			},
		},
		{
			Name: "ptp",
			Gate: "PTP_1588_CLOCK",
			Entries: []Entry{
				{Query: "HAVE_PTP_CLOCK_INFO_GETTIMEX64 if method gettimex64 of ptp_clock_info in include/linux/ptp_clock_kernel.h"},
				{Query: "HAVE_PTP_CLOCK_INFO_ADJFINE if method adjfine of ptp_clock_info in include/linux/ptp_clock_kernel.h"},
				{Query: "NEED_PTP_CLASSIFY_RAW if fun ptp_classify_raw absent in include/linux/ptp_classify.h"},
			},
		},
		{
			Name: "misc",
			Entries: []Entry{
				{Query: "HAVE_FIRMWARE_REQUEST_NOWARN if fun firmware_request_nowarn in include/linux/firmware.h"},
				{Query: "HAVE_PCI_ENABLE_MSIX_RANGE if fun pci_enable_msix_range in include/linux/pci.h"},
				{Query: "HAVE_INCLUDE_BITFIELD if macro FIELD_PREP in include/linux/bitfield.h"},
				{Query: "NEED_DMA_ATTR_WEAK_ORDERING if macro DMA_ATTR_WEAK_ORDERING absent in include/linux/dma-mapping.h"},
				{Query: "HAVE_PCI_ERROR_HANDLERS_RESET_PREPARE if method reset_prepare of pci_error_handlers in include/linux/pci.h"},
			},
		},
	}
}
