package core

// handlers maps every supported command name to its handler. Command
// names are always the dispatcher-uppercased form (message.Command.Cmd).
var handlers map[string]handlerFunc

func init() {
	handlers = map[string]handlerFunc{
		// Strings
		"GET":      cmdGet,
		"SET":      cmdSet,
		"SETEX":    cmdSetEx,
		"SETNX":    cmdSetNx,
		"MSET":     cmdMSet,
		"MSETNX":   cmdMSetNx,
		"APPEND":   cmdAppend,
		"GETSET":   cmdGetSet,
		"STRLEN":   cmdStrLen,
		"GETRANGE": cmdGetRange,
		"SETRANGE": cmdSetRange,
		"GETBIT":   cmdGetBit,
		"SETBIT":   cmdSetBit,
		"INCR":     cmdIncr,
		"INCRBY":   cmdIncrBy,
		"DECR":     cmdDecr,
		"DECRBY":   cmdDecrBy,

		// Keys
		"DEL":       cmdDel,
		"EXISTS":    cmdExists,
		"EXPIRE":    cmdExpire,
		"EXPIREAT":  cmdExpireAt,
		"PERSIST":   cmdPersist,
		"KEYS":      cmdKeys,
		"MOVE":      cmdMove,
		"RANDOMKEY": cmdRandomKey,
		"RENAME":    cmdRename,
		"RENAMENX":  cmdRenameNx,
		"TTL":       cmdTTL,
		"TYPE":      cmdType,
		"OBJECT":    cmdObject,

		// Hashes
		"HGET":    cmdHGet,
		"HMGET":   cmdHMGet,
		"HEXISTS": cmdHExists,
		"HLEN":    cmdHLen,
		"HGETALL": cmdHGetAll,
		"HKEYS":   cmdHKeys,
		"HVALS":   cmdHVals,
		"HSET":    cmdHSet,
		"HSETNX":  cmdHSetNx,
		"HMSET":   cmdHMSet,
		"HDEL":    cmdHDel,
		"HINCRBY": cmdHIncrBy,

		// Lists
		"LLEN":       cmdLLen,
		"LINDEX":     cmdLIndex,
		"LSET":       cmdLSet,
		"LRANGE":     cmdLRange,
		"LTRIM":      cmdLTrim,
		"LREM":       cmdLRem,
		"LPUSH":      cmdLPush,
		"RPUSH":      cmdRPush,
		"LPUSHX":     cmdLPushX,
		"RPUSHX":     cmdRPushX,
		"LPOP":       cmdLPop,
		"RPOP":       cmdRPop,
		"LINSERT":    cmdLInsert,
		"RPOPLPUSH":  cmdRPopLpush,
		"BLPOP":      cmdBLPop,
		"BRPOP":      cmdBRPop,
		"BRPOPLPUSH": cmdBRPopLpush,

		// Sets
		"SADD":        cmdSAdd,
		"SCARD":       cmdSCard,
		"SREM":        cmdSRem,
		"SISMEMBER":   cmdSIsMember,
		"SMEMBERS":    cmdSMembers,
		"SMOVE":       cmdSMove,
		"SPOP":        cmdSPop,
		"SRANDMEMBER": cmdSRandMember,
		"SDIFF":       cmdSDiff,
		"SINTER":      cmdSInter,
		"SUNION":      cmdSUnion,
		"SDIFFSTORE":  cmdSDiffStore,
		"SINTERSTORE": cmdSInterStore,
		"SUNIONSTORE": cmdSUnionStore,

		// Sorted sets
		"ZADD":             cmdZAdd,
		"ZCARD":            cmdZCard,
		"ZCOUNT":           cmdZCount,
		"ZINCRBY":          cmdZIncrBy,
		"ZRANGE":           cmdZRange,
		"ZREVRANGE":        cmdZRevRange,
		"ZRANGEBYSCORE":    cmdZRangeByScore,
		"ZREVRANGEBYSCORE": cmdZRevRangeByScore,
		"ZRANK":            cmdZRank,
		"ZREVRANK":         cmdZRevRank,
		"ZREM":             cmdZRem,
		"ZREMRANGEBYRANK":  cmdZRemRangeByRank,
		"ZREMRANGEBYSCORE": cmdZRemRangeByScore,
		"ZSCORE":           cmdZScore,
		"ZUNIONSTORE":      cmdZUnionStore,
		"ZINTERSTORE":      cmdZInterStore,

		// Server
		"PING":     cmdPing,
		"ECHO":     cmdEcho,
		"DBSIZE":   cmdDBSize,
		"FLUSHDB":  cmdFlushDB,
		"INFO":     cmdInfo,
		"LASTSAVE": cmdLastSave,
		"SAVE":     cmdSave,

		// Transactions
		"EXEC": cmdExec,
	}
}
