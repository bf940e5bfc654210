// 包 localdb：基于本地 GeoLite2 数据库的离线兜底查询
package localdb

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"os"

	"ip-api-client/pkg/ipapi"

	"github.com/oschwald/geoip2-golang"
	"github.com/oschwald/maxminddb-golang"
)

// 文档注释：本地离线数据库
// 背景：远端服务不可达时的降级数据源；City 库提供国家/地区/城市/坐标/时区，
// ASN 库补充自治系统与运营商信息，两者各自可缺省。
// 约束：离线结果的可选字段遵循与远端解码相同的成对规则；mobile/proxy 本地无数据，
// 固定为 false。坐标有效性以时区字段存在与否近似判断（geoip2 的结构化映射无法区分
// 零值与缺失），时区齐备而坐标为零值的记录会产出 (0,0) 坐标。
type DB struct {
	city *geoip2.Reader
	asn  *maxminddb.Reader
	log  *slog.Logger
}

// asnRecord：GeoLite2-ASN 库的字段映射
type asnRecord struct {
	Number uint   `maxminddb:"autonomous_system_number"`
	Org    string `maxminddb:"autonomous_system_organization"`
}

// Open：尝试打开本地数据库，文件缺失或损坏只禁用对应部分，不阻塞启动
// 返回：两个库都不可用时返回 nil，调用方以 nil 判断兜底是否启用
func Open(cityPath, asnPath string, l *slog.Logger) *DB {
	if l == nil {
		l = slog.Default()
	}
	db := &DB{log: l}
	if r, err := openCity(cityPath); err != nil {
		l.Info("localdb_city_disabled", "path", cityPath, "err", err)
	} else {
		db.city = r
		l.Info("localdb_city_ok", "path", cityPath)
	}
	if r, err := openASN(asnPath); err != nil {
		l.Info("localdb_asn_disabled", "path", asnPath, "err", err)
	} else {
		db.asn = r
		l.Info("localdb_asn_ok", "path", asnPath)
	}
	if db.city == nil && db.asn == nil {
		return nil
	}
	return db
}

func openCity(path string) (*geoip2.Reader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return geoip2.Open(path)
}

func openASN(path string) (*maxminddb.Reader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return maxminddb.Open(path)
}

// Lookup：离线解析一个地址为查询结果
// 背景：产出与远端解码同构的 Result，调用方无需区分数据来源即可消费；
// Query 回显即查询地址本身。
func (db *DB) Lookup(addr netip.Addr) (*ipapi.Result, error) {
	if !addr.IsValid() {
		return nil, errors.New("localdb: invalid address")
	}
	ip := net.IP(addr.AsSlice())
	res := &ipapi.Result{Query: addr.String()}

	if db.city != nil {
		rec, err := db.city.City(ip)
		if err != nil {
			return nil, fmt.Errorf("localdb: city lookup: %w", err)
		}
		applyCity(res, rec)
	}
	if db.asn != nil {
		var rec asnRecord
		if err := db.asn.Lookup(ip, &rec); err != nil {
			return nil, fmt.Errorf("localdb: asn lookup: %w", err)
		}
		applyASN(res, rec)
	}
	return res, nil
}

// applyCity：City 记录到结果字段的投影，成对字段两半齐备才写入
func applyCity(res *ipapi.Result, rec *geoip2.City) {
	if rec == nil {
		return
	}
	if name, code := rec.Country.Names["en"], rec.Country.IsoCode; name != "" && code != "" {
		res.Country = &ipapi.NameAndCode{Name: name, Code: code}
	}
	if len(rec.Subdivisions) > 0 {
		sub := rec.Subdivisions[0]
		if name, code := sub.Names["en"], sub.IsoCode; name != "" && code != "" {
			res.Region = &ipapi.NameAndCode{Name: name, Code: code}
		}
	}
	if name := rec.City.Names["en"]; name != "" {
		res.City = &name
	}
	if code := rec.Postal.Code; code != "" {
		res.Zip = &code
	}
	if tz := rec.Location.TimeZone; tz != "" {
		res.Timezone = &tz
	}
	// 无命中时 GeoLite2 返回零值坐标，以时区存在与否判断定位有效
	if rec.Location.TimeZone != "" {
		res.Location = &ipapi.Coordinates{
			Latitude:  rec.Location.Latitude,
			Longitude: rec.Location.Longitude,
		}
	}
}

// applyASN：ASN 记录到自治系统/运营商字段的投影，格式对齐远端的 "AS<号> <组织>"
func applyASN(res *ipapi.Result, rec asnRecord) {
	if rec.Number == 0 {
		return
	}
	as := fmt.Sprintf("AS%d %s", rec.Number, rec.Org)
	res.AutonomousSystem = &as
	if rec.Org != "" {
		org := rec.Org
		res.ISP = &org
		res.Organization = &org
	}
}

// Close：释放底层只读映射
func (db *DB) Close() {
	if db == nil {
		return
	}
	if db.city != nil {
		_ = db.city.Close()
	}
	if db.asn != nil {
		_ = db.asn.Close()
	}
}
