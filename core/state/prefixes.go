package state

import (
	"encoding/binary"
)

var (
	auctionCountKey    = []byte("auction/count")
	auctionItemPrefix  = []byte("auction/item/")
	pendingBidPrefix   = []byte("auction/pending/")
	marketCountKey     = []byte("market/count")
	marketItemPrefix   = []byte("market/item/")
	balancePrefix      = []byte("bank/balance/")
	assetPrefix        = []byte("registry/asset/")
	operatorPrefix     = []byte("registry/operator/")
	tokenCounterPrefix = []byte("registry/count/")
	quotaPrefix        = []byte("quota/")
	genesisKey         = []byte("genesis/applied")
)

func join(prefix []byte, parts ...[]byte) []byte {
	size := len(prefix)
	for _, p := range parts {
		size += len(p)
	}
	buf := make([]byte, 0, size)
	buf = append(buf, prefix...)
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return buf
}

func u64(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[:]
}

func auctionItemKey(id uint64) []byte { return join(auctionItemPrefix, u64(id)) }

func pendingBidKey(itemID uint64, account [20]byte) []byte {
	return join(pendingBidPrefix, u64(itemID), account[:])
}

func marketItemKey(id uint64) []byte { return join(marketItemPrefix, u64(id)) }

func balanceKey(addr [20]byte) []byte { return join(balancePrefix, addr[:]) }

func assetKey(collection [20]byte, tokenID uint64) []byte {
	return join(assetPrefix, collection[:], u64(tokenID))
}

func operatorKey(collection, owner, operator [20]byte) []byte {
	return join(operatorPrefix, collection[:], owner[:], operator[:])
}

func tokenCounterKey(collection [20]byte) []byte { return join(tokenCounterPrefix, collection[:]) }

func quotaKey(module string, addr [20]byte) []byte {
	return join(quotaPrefix, []byte(module), []byte{'/'}, addr[:])
}
