package worldclock

// Region groups catalog cities by continent, using the labels the clients display.
type Region string

// Regions known to the catalog.
const (
	RegionAsia    Region = "亚洲"
	RegionEurope  Region = "欧洲"
	RegionAmerica Region = "美洲"
	RegionOceania Region = "大洋洲"
	RegionAfrica  Region = "非洲"
)

// Regions returns every region in catalog order.
func Regions() []Region {
	return []Region{RegionAsia, RegionEurope, RegionAmerica, RegionOceania, RegionAfrica}
}

// Record is one city of the directory. Records are values; callers get copies.
type Record struct {
	Name        string `json:"name"`
	IANA        string `json:"timezone"`
	Country     string `json:"country"`
	Offset      string `json:"offset"` // standard-time UTC offset label, e.g. "+08:00"
	CountryCode string `json:"countryCode,omitempty"`
	Flag        string `json:"flag,omitempty"`
	Region      Region `json:"region,omitempty"`
}

// catalog is the canonical city list shared by every surface. Order matters:
// it is the tie-break order for search ranking and the FindByIANA scan order.
var catalog = []Record{
	{Name: "北京", IANA: "Asia/Shanghai", Country: "中国", Offset: "+08:00", CountryCode: "CN", Flag: "🇨🇳", Region: RegionAsia},
	{Name: "上海", IANA: "Asia/Shanghai", Country: "中国", Offset: "+08:00", CountryCode: "CN", Flag: "🇨🇳", Region: RegionAsia},
	{Name: "广州", IANA: "Asia/Shanghai", Country: "中国", Offset: "+08:00", CountryCode: "CN", Flag: "🇨🇳", Region: RegionAsia},
	{Name: "深圳", IANA: "Asia/Shanghai", Country: "中国", Offset: "+08:00", CountryCode: "CN", Flag: "🇨🇳", Region: RegionAsia},
	{Name: "香港", IANA: "Asia/Hong_Kong", Country: "中国香港", Offset: "+08:00", CountryCode: "HK", Flag: "🇭🇰", Region: RegionAsia},
	{Name: "台北", IANA: "Asia/Taipei", Country: "中国台湾", Offset: "+08:00", CountryCode: "TW", Flag: "🇹🇼", Region: RegionAsia},
	{Name: "东京", IANA: "Asia/Tokyo", Country: "日本", Offset: "+09:00", CountryCode: "JP", Flag: "🇯🇵", Region: RegionAsia},
	{Name: "大阪", IANA: "Asia/Tokyo", Country: "日本", Offset: "+09:00", CountryCode: "JP", Flag: "🇯🇵", Region: RegionAsia},
	{Name: "首尔", IANA: "Asia/Seoul", Country: "韩国", Offset: "+09:00", CountryCode: "KR", Flag: "🇰🇷", Region: RegionAsia},
	{Name: "新加坡", IANA: "Asia/Singapore", Country: "新加坡", Offset: "+08:00", CountryCode: "SG", Flag: "🇸🇬", Region: RegionAsia},
	{Name: "曼谷", IANA: "Asia/Bangkok", Country: "泰国", Offset: "+07:00", CountryCode: "TH", Flag: "🇹🇭", Region: RegionAsia},
	{Name: "雅加达", IANA: "Asia/Jakarta", Country: "印度尼西亚", Offset: "+07:00", CountryCode: "ID", Flag: "🇮🇩", Region: RegionAsia},
	{Name: "马尼拉", IANA: "Asia/Manila", Country: "菲律宾", Offset: "+08:00", CountryCode: "PH", Flag: "🇵🇭", Region: RegionAsia},
	{Name: "新德里", IANA: "Asia/Kolkata", Country: "印度", Offset: "+05:30", CountryCode: "IN", Flag: "🇮🇳", Region: RegionAsia},
	{Name: "孟买", IANA: "Asia/Kolkata", Country: "印度", Offset: "+05:30", CountryCode: "IN", Flag: "🇮🇳", Region: RegionAsia},
	{Name: "迪拜", IANA: "Asia/Dubai", Country: "阿联酋", Offset: "+04:00", CountryCode: "AE", Flag: "🇦🇪", Region: RegionAsia},
	{Name: "德黑兰", IANA: "Asia/Tehran", Country: "伊朗", Offset: "+03:30", CountryCode: "IR", Flag: "🇮🇷", Region: RegionAsia},
	{Name: "伊斯坦布尔", IANA: "Europe/Istanbul", Country: "土耳其", Offset: "+03:00", CountryCode: "TR", Flag: "🇹🇷", Region: RegionAsia},

	{Name: "伦敦", IANA: "Europe/London", Country: "英国", Offset: "+00:00", CountryCode: "GB", Flag: "🇬🇧", Region: RegionEurope},
	{Name: "巴黎", IANA: "Europe/Paris", Country: "法国", Offset: "+01:00", CountryCode: "FR", Flag: "🇫🇷", Region: RegionEurope},
	{Name: "柏林", IANA: "Europe/Berlin", Country: "德国", Offset: "+01:00", CountryCode: "DE", Flag: "🇩🇪", Region: RegionEurope},
	{Name: "罗马", IANA: "Europe/Rome", Country: "意大利", Offset: "+01:00", CountryCode: "IT", Flag: "🇮🇹", Region: RegionEurope},
	{Name: "马德里", IANA: "Europe/Madrid", Country: "西班牙", Offset: "+01:00", CountryCode: "ES", Flag: "🇪🇸", Region: RegionEurope},
	{Name: "莫斯科", IANA: "Europe/Moscow", Country: "俄罗斯", Offset: "+03:00", CountryCode: "RU", Flag: "🇷🇺", Region: RegionEurope},
	{Name: "阿姆斯特丹", IANA: "Europe/Amsterdam", Country: "荷兰", Offset: "+01:00", CountryCode: "NL", Flag: "🇳🇱", Region: RegionEurope},
	{Name: "苏黎世", IANA: "Europe/Zurich", Country: "瑞士", Offset: "+01:00", CountryCode: "CH", Flag: "🇨🇭", Region: RegionEurope},
	{Name: "维也纳", IANA: "Europe/Vienna", Country: "奥地利", Offset: "+01:00", CountryCode: "AT", Flag: "🇦🇹", Region: RegionEurope},
	{Name: "布鲁塞尔", IANA: "Europe/Brussels", Country: "比利时", Offset: "+01:00", CountryCode: "BE", Flag: "🇧🇪", Region: RegionEurope},
	{Name: "斯德哥尔摩", IANA: "Europe/Stockholm", Country: "瑞典", Offset: "+01:00", CountryCode: "SE", Flag: "🇸🇪", Region: RegionEurope},
	{Name: "奥斯陆", IANA: "Europe/Oslo", Country: "挪威", Offset: "+01:00", CountryCode: "NO", Flag: "🇳🇴", Region: RegionEurope},
	{Name: "哥本哈根", IANA: "Europe/Copenhagen", Country: "丹麦", Offset: "+01:00", CountryCode: "DK", Flag: "🇩🇰", Region: RegionEurope},
	{Name: "赫尔辛基", IANA: "Europe/Helsinki", Country: "芬兰", Offset: "+02:00", CountryCode: "FI", Flag: "🇫🇮", Region: RegionEurope},
	{Name: "华沙", IANA: "Europe/Warsaw", Country: "波兰", Offset: "+01:00", CountryCode: "PL", Flag: "🇵🇱", Region: RegionEurope},
	{Name: "布拉格", IANA: "Europe/Prague", Country: "捷克", Offset: "+01:00", CountryCode: "CZ", Flag: "🇨🇿", Region: RegionEurope},
	{Name: "布达佩斯", IANA: "Europe/Budapest", Country: "匈牙利", Offset: "+01:00", CountryCode: "HU", Flag: "🇭🇺", Region: RegionEurope},
	{Name: "雅典", IANA: "Europe/Athens", Country: "希腊", Offset: "+02:00", CountryCode: "GR", Flag: "🇬🇷", Region: RegionEurope},

	{Name: "纽约", IANA: "America/New_York", Country: "美国", Offset: "-05:00", CountryCode: "US", Flag: "🇺🇸", Region: RegionAmerica},
	{Name: "洛杉矶", IANA: "America/Los_Angeles", Country: "美国", Offset: "-08:00", CountryCode: "US", Flag: "🇺🇸", Region: RegionAmerica},
	{Name: "芝加哥", IANA: "America/Chicago", Country: "美国", Offset: "-06:00", CountryCode: "US", Flag: "🇺🇸", Region: RegionAmerica},
	{Name: "迈阿密", IANA: "America/New_York", Country: "美国", Offset: "-05:00", CountryCode: "US", Flag: "🇺🇸", Region: RegionAmerica},
	{Name: "西雅图", IANA: "America/Los_Angeles", Country: "美国", Offset: "-08:00", CountryCode: "US", Flag: "🇺🇸", Region: RegionAmerica},
	{Name: "多伦多", IANA: "America/Toronto", Country: "加拿大", Offset: "-05:00", CountryCode: "CA", Flag: "🇨🇦", Region: RegionAmerica},
	{Name: "温哥华", IANA: "America/Vancouver", Country: "加拿大", Offset: "-08:00", CountryCode: "CA", Flag: "🇨🇦", Region: RegionAmerica},
	{Name: "墨西哥城", IANA: "America/Mexico_City", Country: "墨西哥", Offset: "-06:00", CountryCode: "MX", Flag: "🇲🇽", Region: RegionAmerica},
	{Name: "圣保罗", IANA: "America/Sao_Paulo", Country: "巴西", Offset: "-03:00", CountryCode: "BR", Flag: "🇧🇷", Region: RegionAmerica},
	{Name: "里约热内卢", IANA: "America/Sao_Paulo", Country: "巴西", Offset: "-03:00", CountryCode: "BR", Flag: "🇧🇷", Region: RegionAmerica},
	{Name: "布宜诺斯艾利斯", IANA: "America/Argentina/Buenos_Aires", Country: "阿根廷", Offset: "-03:00", CountryCode: "AR", Flag: "🇦🇷", Region: RegionAmerica},
	{Name: "圣地亚哥", IANA: "America/Santiago", Country: "智利", Offset: "-04:00", CountryCode: "CL", Flag: "🇨🇱", Region: RegionAmerica},
	{Name: "利马", IANA: "America/Lima", Country: "秘鲁", Offset: "-05:00", CountryCode: "PE", Flag: "🇵🇪", Region: RegionAmerica},
	{Name: "波哥大", IANA: "America/Bogota", Country: "哥伦比亚", Offset: "-05:00", CountryCode: "CO", Flag: "🇨🇴", Region: RegionAmerica},
	{Name: "加拉加斯", IANA: "America/Caracas", Country: "委内瑞拉", Offset: "-04:00", CountryCode: "VE", Flag: "🇻🇪", Region: RegionAmerica},

	{Name: "悉尼", IANA: "Australia/Sydney", Country: "澳大利亚", Offset: "+10:00", CountryCode: "AU", Flag: "🇦🇺", Region: RegionOceania},
	{Name: "墨尔本", IANA: "Australia/Melbourne", Country: "澳大利亚", Offset: "+10:00", CountryCode: "AU", Flag: "🇦🇺", Region: RegionOceania},
	{Name: "布里斯班", IANA: "Australia/Brisbane", Country: "澳大利亚", Offset: "+10:00", CountryCode: "AU", Flag: "🇦🇺", Region: RegionOceania},
	{Name: "珀斯", IANA: "Australia/Perth", Country: "澳大利亚", Offset: "+08:00", CountryCode: "AU", Flag: "🇦🇺", Region: RegionOceania},
	{Name: "奥克兰", IANA: "Pacific/Auckland", Country: "新西兰", Offset: "+12:00", CountryCode: "NZ", Flag: "🇳🇿", Region: RegionOceania},
	{Name: "惠灵顿", IANA: "Pacific/Auckland", Country: "新西兰", Offset: "+12:00", CountryCode: "NZ", Flag: "🇳🇿", Region: RegionOceania},
	{Name: "斐济", IANA: "Pacific/Fiji", Country: "斐济", Offset: "+12:00", CountryCode: "FJ", Flag: "🇫🇯", Region: RegionOceania},
	{Name: "塔希提", IANA: "Pacific/Tahiti", Country: "法属波利尼西亚", Offset: "-10:00", CountryCode: "PF", Flag: "🇵🇫", Region: RegionOceania},

	{Name: "开罗", IANA: "Africa/Cairo", Country: "埃及", Offset: "+02:00", CountryCode: "EG", Flag: "🇪🇬", Region: RegionAfrica},
	{Name: "约翰内斯堡", IANA: "Africa/Johannesburg", Country: "南非", Offset: "+02:00", CountryCode: "ZA", Flag: "🇿🇦", Region: RegionAfrica},
	{Name: "开普敦", IANA: "Africa/Johannesburg", Country: "南非", Offset: "+02:00", CountryCode: "ZA", Flag: "🇿🇦", Region: RegionAfrica},
	{Name: "拉各斯", IANA: "Africa/Lagos", Country: "尼日利亚", Offset: "+01:00", CountryCode: "NG", Flag: "🇳🇬", Region: RegionAfrica},
	{Name: "内罗毕", IANA: "Africa/Nairobi", Country: "肯尼亚", Offset: "+03:00", CountryCode: "KE", Flag: "🇰🇪", Region: RegionAfrica},
	{Name: "卡萨布兰卡", IANA: "Africa/Casablanca", Country: "摩洛哥", Offset: "+01:00", CountryCode: "MA", Flag: "🇲🇦", Region: RegionAfrica},
	{Name: "突尼斯", IANA: "Africa/Tunis", Country: "突尼斯", Offset: "+01:00", CountryCode: "TN", Flag: "🇹🇳", Region: RegionAfrica},
	{Name: "阿尔及尔", IANA: "Africa/Algiers", Country: "阿尔及利亚", Offset: "+01:00", CountryCode: "DZ", Flag: "🇩🇿", Region: RegionAfrica},
}

// DefaultCities is the selection a fresh install starts with.
func DefaultCities() []Record {
	ids := []string{"北京", "纽约", "伦敦", "东京", "悉尼", "巴黎"}
	out := make([]Record, 0, len(ids))
	for _, name := range ids {
		for i := range catalog {
			if catalog[i].Name == name {
				out = append(out, catalog[i])
				break
			}
		}
	}
	return out
}
