package cli

import (
	"errors"
	"strconv"
	"strings"

	"github.com/unkn0wn-root/redcached"
)

type replyKind uint8

const (
	replyStatus replyKind = iota
	replyInteger
	replyBulk
	replyNil
	replyArray
	replyError
)

// Reply is a command result, printed the way redis-cli prints replies.
type Reply struct {
	kind  replyKind
	str   string
	n     int64
	items []Reply
}

func status(s string) Reply         { return Reply{kind: replyStatus, str: s} }
func integer(n int64) Reply         { return Reply{kind: replyInteger, n: n} }
func bulk(s string) Reply           { return Reply{kind: replyBulk, str: s} }
func null() Reply                   { return Reply{kind: replyNil} }
func array(items ...Reply) Reply    { return Reply{kind: replyArray, items: items} }
func errorf(s string) Reply         { return Reply{kind: replyError, str: s} }
func value(v redcached.Value) Reply { return bulk(v.Text()) }

func boolean(b bool) Reply {
	if b {
		return integer(1)
	}
	return integer(0)
}

func values(vs []redcached.Value) Reply {
	items := make([]Reply, len(vs))
	for i, v := range vs {
		items[i] = value(v)
	}
	return array(items...)
}

func texts(ss []string) Reply {
	items := make([]Reply, len(ss))
	for i, s := range ss {
		items[i] = bulk(s)
	}
	return array(items...)
}

// fromError maps client errors onto Redis error prefixes.
func fromError(err error) Reply {
	switch {
	case errors.Is(err, redcached.ErrWrongType):
		return errorf("WRONGTYPE " + err.Error())
	case errors.Is(err, redcached.ErrConflict):
		return errorf("CONFLICT " + err.Error())
	default:
		return errorf("ERR " + err.Error())
	}
}

func (r Reply) IsError() bool { return r.kind == replyError }

func (r Reply) String() string {
	var b strings.Builder
	r.write(&b, "")
	return b.String()
}

func (r Reply) write(b *strings.Builder, indent string) {
	switch r.kind {
	case replyStatus:
		b.WriteString(r.str)
	case replyInteger:
		b.WriteString("(integer) ")
		b.WriteString(strconv.FormatInt(r.n, 10))
	case replyBulk:
		b.WriteString(strconv.Quote(r.str))
	case replyNil:
		b.WriteString("(nil)")
	case replyError:
		b.WriteString("(error) ")
		b.WriteString(r.str)
	case replyArray:
		if len(r.items) == 0 {
			b.WriteString("(empty array)")
			return
		}
		width := len(strconv.Itoa(len(r.items)))
		for i, it := range r.items {
			if i > 0 {
				b.WriteString("\n")
				b.WriteString(indent)
			}
			num := strconv.Itoa(i + 1)
			b.WriteString(strings.Repeat(" ", width-len(num)))
			b.WriteString(num)
			b.WriteString(") ")
			it.write(b, indent+strings.Repeat(" ", width+2))
		}
	}
}
